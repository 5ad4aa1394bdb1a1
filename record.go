package lexsort

import (
	"bytes"

	"github.com/valyala/bytebufferpool"
)

// maxNumber is the largest value the number field may hold: a signed
// 32-bit width's positive range, even though number itself is stored
// unsigned (the grammar never admits a sign on the wire). Widening this
// to the full uint32 range would silently accept numbers the original
// 32-bit-signed parser rejects, so the ceiling is kept at 2^31-1.
const maxNumber uint32 = 1<<31 - 1

var recordPool bytebufferpool.Pool

// Record is a parsed line: a non-negative integer and the text that
// followed it. text is backed by a pooled buffer so that sorting and
// spilling a run doesn't pin one allocation per line for the lifetime of
// the batch; call Release once the record has been durably serialized.
type Record struct {
	text   *bytebufferpool.ByteBuffer
	number uint32
}

// newRecord fetches a record with a pooled, empty text buffer.
func newRecord() *Record {
	return &Record{text: recordPool.Get()}
}

// set copies text into the record's pooled buffer and stores number.
func (r *Record) set(number uint32, text []byte) {
	r.number = number
	r.text.B = append(r.text.B[:0], text...)
}

// Text returns the record's text part.
func (r *Record) Text() []byte { return r.text.B }

// Number returns the record's integer part.
func (r *Record) Number() uint32 { return r.number }

// Release returns the record's backing buffer to the pool. The record
// must not be used afterwards.
func (r *Record) Release() {
	if r.text != nil {
		recordPool.Put(r.text)
		r.text = nil
	}
}

// compareRecords orders records by ordinal-byte text first, ascending
// number second.
func compareRecords(a, b *Record) int {
	if c := bytes.Compare(a.text.B, b.text.B); c != 0 {
		return c
	}
	switch {
	case a.number < b.number:
		return -1
	case a.number > b.number:
		return 1
	default:
		return 0
	}
}

// recordSlice adapts a []*Record for sort.Sort using the record
// comparator; no stability is required or assumed.
type recordSlice []*Record

func (s recordSlice) Len() int      { return len(s) }
func (s recordSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s recordSlice) Less(i, j int) bool {
	return compareRecords(s[i], s[j]) < 0
}

// tryParseLine parses a line of the grammar DIGIT+ "." SP BYTE*. line
// must have its line terminator already stripped. Returns ok=false for
// any line that doesn't match.
func tryParseLine(line []byte) (number uint32, text []byte, ok bool) {
	dot := bytes.IndexByte(line, '.')
	if dot <= 0 {
		return 0, nil, false
	}
	if dot+1 >= len(line) || line[dot+1] != ' ' {
		return 0, nil, false
	}
	if dot+2 >= len(line) {
		// No byte beyond ". " — text must be non-empty.
		return 0, nil, false
	}

	var n uint64
	for _, c := range line[:dot] {
		if c < '0' || c > '9' {
			return 0, nil, false
		}
		n = n*10 + uint64(c-'0')
		if n > uint64(maxNumber) {
			return 0, nil, false
		}
	}

	return uint32(n), line[dot+2:], true
}
