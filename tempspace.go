package lexsort

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// TempSpace allocates unique filenames under a dedicated directory and
// guarantees best-effort deletion on normal exit, error, and
// cancellation. Per-pass intermediates live under a nested pass-N
// subdirectory so a merge pass can drop its inputs as a single
// recursive remove.
type TempSpace struct {
	root    string
	keep    bool
	log     *slog.Logger
	counter atomic.Uint64
	owned   bool // true if this TempSpace created root and should remove it
}

// newTempSpace creates (or adopts) the scratch directory rooted at dir.
func newTempSpace(dir string, keep bool, log *slog.Logger) (*TempSpace, error) {
	owned := false
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		owned = true
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("lexsort: create temp dir %q: %w", dir, err)
	}
	return &TempSpace{root: dir, keep: keep, log: log, owned: owned}, nil
}

// NewName mints a fresh unique file path directly under the TempSpace
// root.
func (t *TempSpace) NewName() string {
	return filepath.Join(t.root, t.nextName())
}

// PassDir returns (creating if necessary) the nested subdirectory for
// merge pass n.
func (t *TempSpace) PassDir(n int) (string, error) {
	dir := filepath.Join(t.root, fmt.Sprintf("pass-%d", n))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("lexsort: create pass dir %q: %w", dir, err)
	}
	return dir, nil
}

// NewNameIn mints a fresh unique file path under dir (typically a
// PassDir result).
func (t *TempSpace) NewNameIn(dir string) string {
	return filepath.Join(dir, t.nextName())
}

func (t *TempSpace) nextName() string {
	id := t.counter.Add(1)
	return fmt.Sprintf("run-%08x", id)
}

// RemoveAll best-effort removes every file in paths. Errors are logged,
// not fatal.
func (t *TempSpace) RemoveAll(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			t.warn("remove temp run file failed", "path", p, "error", err)
		}
	}
}

// RemoveDir best-effort recursively removes dir (typically a PassDir).
func (t *TempSpace) RemoveDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		t.warn("remove temp pass dir failed", "dir", dir, "error", err)
	}
}

// Close best-effort recursively removes the entire TempSpace root on
// every exit path: success, failure, and cancellation alike.
func (t *TempSpace) Close() {
	if t.keep || !t.owned {
		return
	}
	if err := os.RemoveAll(t.root); err != nil {
		t.warn("remove temp dir failed", "dir", t.root, "error", err)
	}
}

func (t *TempSpace) warn(msg string, args ...any) {
	if t.log != nil {
		t.log.Warn(msg, args...)
	}
}
