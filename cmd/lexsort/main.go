// Command lexsort is a thin CLI front end around the lexsort engine.
// Argument parsing and help text are intentionally minimal glue around
// the sort engine.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bsm/lexsort"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("lexsort", pflag.ContinueOnError)
	inPath := fs.String("in", "", "input file path (required)")
	outPath := fs.String("out", "", "output file path (required)")
	tempDir := fs.String("temp-dir", "", "scratch directory (default <dir of --out>/runs)")
	memMB := fs.Int("mem-mb", 1024, "coarse memory budget in MiB")
	runSizeMB := fs.Int("run-size-mb", 0, "per-run byte budget in MiB (default: --mem-mb)")
	threads := fs.Int("threads", 0, "writer-worker count for phase 1 (default: max(1, cpus/2))")
	fanIn := fs.Int("fan-in", 128, "max runs merged per pass (>= 2)")
	verbose := fs.Bool("verbose", false, "log phase progress to stderr")
	keepTemp := fs.Bool("keep-temp", false, "do not remove the scratch directory (debugging only)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	opts := &lexsort.Options{
		InPath:    *inPath,
		OutPath:   *outPath,
		TempDir:   *tempDir,
		MemMB:     *memMB,
		RunSizeMB: *runSizeMB,
		Threads:   *threads,
		FanIn:     *fanIn,
		Logger:    logger,
		KeepTemp:  *keepTemp,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, stats, err := lexsort.Sort(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if logger != nil {
		logger.Info("done", "outcome", outcome.String(), "valid_records", stats.ValidRecords, "invalid_lines", stats.InvalidLines)
	}

	switch outcome {
	case lexsort.Ok:
		return 0
	case lexsort.InvalidArgs:
		return 2
	case lexsort.Cancelled:
		return 130
	default:
		return 1
	}
}
