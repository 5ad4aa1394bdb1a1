package lexsort

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	lexsorterrors "github.com/bsm/lexsort/errors"
)

// runWriterBufSize is the buffered-writer size used for both run and
// final output files.
const runWriterBufSize = 1 << 20

// runWriter streams records to a temporary or destination file in the
// canonical textual form "<number>. <text>\n".
type runWriter struct {
	f       *os.File
	bw      *bufio.Writer
	scratch []byte
	path    string
}

func createRunWriter(path string) (*runWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lexsort: create run file %q: %w: %w", path, lexsorterrors.ErrIO, err)
	}
	return &runWriter{
		f:       f,
		bw:      bufio.NewWriterSize(f, runWriterBufSize),
		scratch: make([]byte, 0, 32),
		path:    path,
	}, nil
}

// WriteRecord serializes number and text as "<number>. <text>\n".
func (w *runWriter) WriteRecord(number uint32, text []byte) error {
	w.scratch = strconv.AppendUint(w.scratch[:0], uint64(number), 10)
	if _, err := w.bw.Write(w.scratch); err != nil {
		return err
	}
	if _, err := w.bw.WriteString(". "); err != nil {
		return err
	}
	if _, err := w.bw.Write(text); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

// Close flushes, fsyncs, and closes the file. Durability is required
// before the run may be consumed by the merge phase.
func (w *runWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("lexsort: flush run file %q: %w: %w", w.path, lexsorterrors.ErrIO, err)
	}
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("lexsort: fsync run file %q: %w: %w", w.path, lexsorterrors.ErrIO, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("lexsort: close run file %q: %w: %w", w.path, lexsorterrors.ErrIO, err)
	}
	return nil
}

// Abort closes and removes a partially written file, used on the
// cleanup path after an error mid-write.
func (w *runWriter) Abort() {
	_ = w.f.Close()
	_ = os.Remove(w.path)
}
