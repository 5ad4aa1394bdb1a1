package lexsort

import (
	"bufio"
	"fmt"
	"io"
	"os"

	lexsorterrors "github.com/bsm/lexsort/errors"
)

// runReader reads records from a run file in order, silently skipping
// any line that fails to parse.
type runReader struct {
	f    *os.File
	br   *bufio.Reader
	path string
}

func openRunReader(path string) (*runReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexsort: open run file %q: %w: %w", path, lexsorterrors.ErrIO, err)
	}
	return &runReader{f: f, br: bufio.NewReaderSize(f, runWriterBufSize), path: path}, nil
}

// Next advances to the next valid record, storing it into dst. Returns
// ok=false once the run is exhausted.
func (r *runReader) Next(dst *Record) (ok bool, err error) {
	for {
		line, _, err := readLine(r.br)
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("lexsort: read run file %q: %w: %w", r.path, lexsorterrors.ErrIO, err)
		}
		if number, text, parsed := tryParseLine(line); parsed {
			dst.set(number, text)
			return true, nil
		}
	}
}

func (r *runReader) Close() error {
	return r.f.Close()
}
