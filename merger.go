package lexsort

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	lexsorterrors "github.com/bsm/lexsort/errors"
)

// merger repeatedly applies fan-in-bounded k-way merges until at most
// FanIn runs remain, then does a final pass into outPath.
type merger struct {
	opts *Options
	ts   *TempSpace
	log  *slog.Logger
}

// Run merges runs into outPath.
func (m *merger) Run(ctx context.Context, runs []string, outPath string) error {
	switch len(runs) {
	case 0:
		return createEmptyFile(outPath)
	case 1:
		return copyFile(runs[0], outPath)
	}

	pass := 0
	// retireDir is the previous pass's subdirectory, if any; once a pass's
	// outputs are themselves consumed by the next pass, the whole
	// subdirectory can be dropped in one recursive remove instead of
	// file-by-file. Runs from before the first pass live directly under
	// the TempSpace root, not in a subdirectory of their own, so retireDir
	// starts empty and RemoveAll applies to them instead.
	var retireDir string
	for len(runs) > m.opts.FanIn {
		select {
		case <-ctx.Done():
			m.ts.RemoveAll(runs)
			return ctx.Err()
		default:
		}

		passDir, err := m.ts.PassDir(pass)
		if err != nil {
			m.ts.RemoveAll(runs)
			return err
		}

		chunks := partition(runs, m.opts.FanIn)
		newRuns := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				m.ts.RemoveAll(runs)
				m.ts.RemoveAll(newRuns)
				return ctx.Err()
			default:
			}

			out := m.ts.NewNameIn(passDir)
			if err := m.mergeBatch(ctx, chunk, out); err != nil {
				m.ts.RemoveAll(runs)
				m.ts.RemoveAll(newRuns)
				return err
			}
			newRuns = append(newRuns, out)
		}

		if retireDir != "" {
			m.ts.RemoveDir(retireDir)
		} else {
			m.ts.RemoveAll(runs)
		}
		retireDir = passDir
		runs = newRuns
		pass++

		if m.log != nil {
			m.log.Info("merge pass complete", "pass", pass, "runs_remaining", len(runs))
		}
	}

	if err := m.mergeBatch(ctx, runs, outPath); err != nil {
		m.ts.RemoveAll(runs)
		return err
	}
	if retireDir != "" {
		m.ts.RemoveDir(retireDir)
	} else {
		m.ts.RemoveAll(runs)
	}

	if m.log != nil {
		m.log.Info("phase2 finish", "passes", pass)
	}
	return nil
}

// mergeBatch performs one k-way merge of paths into out.
func (m *merger) mergeBatch(ctx context.Context, paths []string, out string) error {
	sources := make([]*mergeSource, 0, len(paths))
	defer func() {
		for _, s := range sources {
			_ = s.close()
		}
	}()

	h := &mergeHeap{}
	for _, p := range paths {
		r, err := openRunReader(p)
		if err != nil {
			return err
		}
		src := &mergeSource{r: r}
		sources = append(sources, src)

		ok, err := src.advance()
		if err != nil {
			return err
		}
		if ok {
			heap.Push(h, src)
		}
	}

	w, err := createRunWriter(out)
	if err != nil {
		return err
	}

	for h.Len() > 0 {
		select {
		case <-ctx.Done():
			w.Abort()
			return ctx.Err()
		default:
		}

		src := heap.Pop(h).(*mergeSource)
		if err := w.WriteRecord(src.cur.Number(), src.cur.Text()); err != nil {
			w.Abort()
			return fmt.Errorf("lexsort: write merge output %q: %w: %w", out, lexsorterrors.ErrIO, err)
		}

		ok, err := src.advance()
		if err != nil {
			w.Abort()
			return err
		}
		if ok {
			heap.Push(h, src)
		}
	}

	return w.Close()
}

// partition splits runs into contiguous chunks of at most fanIn.
func partition(runs []string, fanIn int) [][]string {
	chunks := make([][]string, 0, (len(runs)+fanIn-1)/fanIn)
	for i := 0; i < len(runs); i += fanIn {
		end := i + fanIn
		if end > len(runs) {
			end = len(runs)
		}
		chunks = append(chunks, runs[i:end])
	}
	return chunks
}

func createEmptyFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("lexsort: create output %q: %w: %w", path, lexsorterrors.ErrIO, err)
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("lexsort: open run %q: %w: %w", src, lexsorterrors.ErrIO, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("lexsort: create output %q: %w: %w", dst, lexsorterrors.ErrIO, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("lexsort: copy run %q to output %q: %w: %w", src, dst, lexsorterrors.ErrIO, err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("lexsort: fsync output %q: %w: %w", dst, lexsorterrors.ErrIO, err)
	}
	return out.Close()
}
