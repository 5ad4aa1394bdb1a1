package lexsort

import (
	"log/slog"
	"path/filepath"
	"runtime"
)

// defaultFanIn is the default maximum number of runs merged per pass.
const defaultFanIn = 128

// defaultMemMB is the default coarse memory budget.
const defaultMemMB = 1024

// Options is the configuration surface consumed by Sort. The external
// CLI front end (cmd/lexsort) builds one of these from flags; callers
// embedding the package build one directly.
type Options struct {
	// InPath is the input file to sort. Required.
	InPath string
	// OutPath is the destination file. Required.
	OutPath string
	// TempDir is the scratch root. Defaults to "<dir of OutPath>/runs".
	TempDir string
	// MemMB is the coarse memory budget in MiB. Default 1024.
	MemMB int
	// RunSizeMB is the per-run byte budget in MiB. Defaults to MemMB.
	RunSizeMB int
	// Threads is the writer-worker count for phase 1.
	// Default max(1, runtime.NumCPU()/2).
	Threads int
	// FanIn is the max runs merged per pass, must be >= 2. Default 128.
	FanIn int
	// Logger receives phase/progress events. Nil disables logging.
	Logger *slog.Logger
	// KeepTemp disables best-effort temp directory removal; intended
	// for debugging only.
	KeepTemp bool
}

// norm returns a copy of o with defaults applied.
func (o *Options) norm() *Options {
	n := *o

	if n.MemMB <= 0 {
		n.MemMB = defaultMemMB
	}
	if n.RunSizeMB <= 0 {
		n.RunSizeMB = n.MemMB
	}
	if n.Threads <= 0 {
		n.Threads = max(1, runtime.NumCPU()/2)
	}
	if n.FanIn <= 0 {
		n.FanIn = defaultFanIn
	}
	if n.TempDir == "" {
		n.TempDir = filepath.Join(filepath.Dir(n.OutPath), "runs")
	}
	return &n
}

// runSizeBytes returns the per-run byte budget.
func (o *Options) runSizeBytes() int64 {
	return int64(o.RunSizeMB) << 20
}
