package lexsort

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	lexsorterrors "github.com/bsm/lexsort/errors"
)

// buildStats tallies what phase 1 observed.
type buildStats struct {
	ValidRecords int64
	InvalidLines int64
}

// runBuilder sorts the input in bounded-size batches: a single reader
// goroutine partitions the input into memory-sized batches; a pool of
// writer-worker goroutines sorts and spills each batch to its own run
// file. One errgroup.Group owns a derived context that every goroutine,
// including the reader, selects on to observe cancellation promptly.
type runBuilder struct {
	opts *Options
	ts   *TempSpace
	log  *slog.Logger
}

// Run executes phase 1 and returns the unordered set of run-file paths
// it produced.
func (b *runBuilder) Run(ctx context.Context, inPath string) ([]string, buildStats, error) {
	var stats buildStats

	f, err := os.Open(inPath)
	if err != nil {
		return nil, stats, fmt.Errorf("lexsort: open input %q: %w: %w", inPath, lexsorterrors.ErrIO, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, inputBufSize)
	if err := stripBOM(br); err != nil {
		return nil, stats, fmt.Errorf("lexsort: read input %q: %w: %w", inPath, lexsorterrors.ErrIO, err)
	}

	workChan := make(chan []*Record, max(1, b.opts.Threads))

	g, gctx := errgroup.WithContext(ctx)

	var (
		mu   sync.Mutex
		runs []string
	)

	for i := 0; i < b.opts.Threads; i++ {
		g.Go(func() error {
			return b.writeWorker(gctx, workChan, &mu, &runs, &stats)
		})
	}

	readErr := b.readAndDispatch(gctx, br, inPath, workChan, &stats)
	close(workChan)

	waitErr := g.Wait()

	if readErr != nil || waitErr != nil {
		b.ts.RemoveAll(runs)
		if readErr != nil {
			return nil, stats, readErr
		}
		return nil, stats, waitErr
	}

	if b.log != nil {
		b.log.Info("phase1 finish", "runs", len(runs), "valid_records", stats.ValidRecords, "invalid_lines", stats.InvalidLines)
	}

	return runs, stats, nil
}

// readAndDispatch is the single reader goroutine: it scans the input,
// accumulates a batch, and hands it to the bounded work channel once
// the input-byte watermark reaches the run-size budget.
func (b *runBuilder) readAndDispatch(ctx context.Context, br *bufio.Reader, inPath string, workChan chan<- []*Record, stats *buildStats) error {
	budget := b.opts.runSizeBytes()

	var (
		batch     []*Record
		consumed  int64
		lastBatch int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		select {
		case workChan <- batch:
		case <-ctx.Done():
			releaseBatch(batch)
			return ctx.Err()
		}
		lastBatch = len(batch)
		batch = make([]*Record, 0, lastBatch)
		consumed = 0
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			releaseBatch(batch)
			return ctx.Err()
		default:
		}

		line, n, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			releaseBatch(batch)
			return fmt.Errorf("lexsort: read input %q: %w: %w", inPath, lexsorterrors.ErrIO, err)
		}
		consumed += int64(n)

		if number, text, ok := tryParseLine(line); ok {
			rec := newRecord()
			rec.set(number, text)
			batch = append(batch, rec)
			atomic.AddInt64(&stats.ValidRecords, 1)
		} else {
			atomic.AddInt64(&stats.InvalidLines, 1)
		}

		if consumed >= budget && len(batch) > 0 {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// writeWorker pulls batches off the work channel, sorts each in place,
// and streams it to a fresh run file.
func (b *runBuilder) writeWorker(ctx context.Context, workChan <-chan []*Record, mu *sync.Mutex, runs *[]string, stats *buildStats) error {
	for batch := range workChan {
		select {
		case <-ctx.Done():
			releaseBatch(batch)
			return ctx.Err()
		default:
		}

		if err := b.spill(batch, mu, runs); err != nil {
			return err
		}
	}
	return nil
}

func (b *runBuilder) spill(batch []*Record, mu *sync.Mutex, runs *[]string) error {
	sort.Sort(recordSlice(batch))

	path := b.ts.NewName()
	w, err := createRunWriter(path)
	if err != nil {
		releaseBatch(batch)
		return err
	}

	for _, rec := range batch {
		if werr := w.WriteRecord(rec.Number(), rec.Text()); werr != nil {
			w.Abort()
			releaseBatch(batch)
			return fmt.Errorf("lexsort: write run %q: %w: %w", path, lexsorterrors.ErrIO, werr)
		}
		rec.Release()
	}

	if err := w.Close(); err != nil {
		return err
	}

	mu.Lock()
	*runs = append(*runs, path)
	mu.Unlock()

	if b.log != nil {
		b.log.Info("phase1 spilled run", "path", path, "records", len(batch))
	}
	return nil
}

func releaseBatch(batch []*Record) {
	for _, rec := range batch {
		rec.Release()
	}
}
