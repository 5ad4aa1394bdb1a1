// Package lexsort implements a bounded-memory, two-phase external
// merge-sort engine: a run builder followed by a k-way merger that
// sorts arbitrarily large "<integer>. <text>" line files by
// byte-ordinal text, ties broken by ascending integer.
package lexsort

import (
	"context"
	"errors"
	"fmt"
	"os"

	lexsorterrors "github.com/bsm/lexsort/errors"
)

// Outcome is the exit-outcome enum surfaced to the external CLI
// collaborator.
type Outcome int

const (
	Ok Outcome = iota
	InvalidArgs
	Cancelled
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case InvalidArgs:
		return "invalid_args"
	case Cancelled:
		return "cancelled"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Stats reports what the engine observed while sorting.
type Stats struct {
	ValidRecords int64
	InvalidLines int64
	Runs         int
	// MergePasses is not populated by Sort; it is always zero.
	MergePasses int
}

// Sort runs the full two-phase pipeline against opts, returning the
// outcome classification, accumulated Stats, and the underlying error
// (nil on success).
func Sort(ctx context.Context, opts *Options) (Outcome, Stats, error) {
	var stats Stats

	if err := validate(opts); err != nil {
		return InvalidArgs, stats, err
	}
	o := opts.norm()

	if _, err := os.Stat(o.InPath); err != nil {
		wrapped := fmt.Errorf("%w: %v", lexsorterrors.ErrInputMissing, err)
		return classify(wrapped), stats, wrapped
	}

	ts, err := newTempSpace(o.TempDir, o.KeepTemp, o.Logger)
	if err != nil {
		return classify(err), stats, err
	}
	defer ts.Close()

	if o.Logger != nil {
		o.Logger.Info("sort start", "in", o.InPath, "out", o.OutPath, "mem_mb", o.MemMB, "threads", o.Threads, "fan_in", o.FanIn)
	}

	rb := &runBuilder{opts: o, ts: ts, log: o.Logger}
	runs, buildStats, err := rb.Run(ctx, o.InPath)
	stats.ValidRecords = buildStats.ValidRecords
	stats.InvalidLines = buildStats.InvalidLines
	stats.Runs = len(runs)
	if err != nil {
		return classify(err), stats, err
	}

	mg := &merger{opts: o, ts: ts, log: o.Logger}
	if err := mg.Run(ctx, runs, o.OutPath); err != nil {
		return classify(err), stats, err
	}

	if o.Logger != nil {
		o.Logger.Info("sort finish", "valid_records", stats.ValidRecords, "invalid_lines", stats.InvalidLines, "runs", stats.Runs)
	}

	return Ok, stats, nil
}

// validate reports the InvalidArgs conditions on opts.
func validate(opts *Options) error {
	if opts.InPath == "" {
		return lexsorterrors.ErrMissingInPath
	}
	if opts.OutPath == "" {
		return lexsorterrors.ErrMissingOutPath
	}
	if opts.FanIn != 0 && opts.FanIn < 2 {
		return lexsorterrors.ErrFanInTooSmall
	}
	return nil
}

// classify maps an error to its Outcome: cancellation takes precedence
// over any in-flight I/O error it caused.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return Ok
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	case errors.Is(err, lexsorterrors.ErrMissingInPath),
		errors.Is(err, lexsorterrors.ErrMissingOutPath),
		errors.Is(err, lexsorterrors.ErrFanInTooSmall),
		errors.Is(err, lexsorterrors.ErrBadNumericFlag):
		return InvalidArgs
	case errors.Is(err, lexsorterrors.ErrInputMissing):
		// Not an InvalidArgs: the path was well-formed, just absent or
		// unreadable at run time — a runtime condition, so it surfaces
		// as Fatal.
		return Fatal
	default:
		return Fatal
	}
}
