package lexsort

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/bsm/ginkgo/v2"
	. "github.com/bsm/gomega"
)

func writeRun(dir, name string, entries [][2]any) string {
	path := filepath.Join(dir, name)
	w, err := createRunWriter(path)
	Expect(err).NotTo(HaveOccurred())
	for _, e := range entries {
		Expect(w.WriteRecord(uint32(e[0].(int)), []byte(e[1].(string)))).To(Succeed())
	}
	Expect(w.Close()).To(Succeed())
	return path
}

var _ = Describe("merger", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "lexsort-mg-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = os.RemoveAll(dir) })
	})

	It("creates an empty output for zero runs", func() {
		opts := (&Options{OutPath: filepath.Join(dir, "out.txt"), TempDir: filepath.Join(dir, "runs")}).norm()
		ts, err := newTempSpace(opts.TempDir, false, nil)
		Expect(err).NotTo(HaveOccurred())
		defer ts.Close()

		mg := &merger{opts: opts, ts: ts}
		out := filepath.Join(dir, "out.txt")
		Expect(mg.Run(context.Background(), nil, out)).To(Succeed())

		info, err := os.Stat(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeZero())
	})

	It("copies the single run verbatim for one run", func() {
		run := writeRun(dir, "run-0", [][2]any{{1, "a"}, {2, "b"}})
		opts := (&Options{OutPath: filepath.Join(dir, "out.txt"), TempDir: filepath.Join(dir, "runs")}).norm()
		ts, err := newTempSpace(opts.TempDir, false, nil)
		Expect(err).NotTo(HaveOccurred())
		defer ts.Close()

		mg := &merger{opts: opts, ts: ts}
		out := filepath.Join(dir, "out.txt")
		Expect(mg.Run(context.Background(), []string{run}, out)).To(Succeed())

		Expect(readLines(out)).To(Equal([]string{"1. a", "2. b"}))
	})

	It("gives identical results for bounded and unbounded fan-in", func() {
		// The merger deletes the runs it consumes, so each merge gets its
		// own copy of the same run files.
		var runLow, runHigh []string
		for r := 0; r < 20; r++ {
			var entries [][2]any
			for i := 0; i < 50; i++ {
				entries = append(entries, [2]any{i, fmt.Sprintf("%03d-r%d", r*50+i, r)})
			}
			runLow = append(runLow, writeRun(dir, fmt.Sprintf("low-run-%d", r), entries))
			runHigh = append(runHigh, writeRun(dir, fmt.Sprintf("high-run-%d", r), entries))
		}

		optsLow := (&Options{OutPath: filepath.Join(dir, "low.txt"), TempDir: filepath.Join(dir, "runs-low"), FanIn: 3}).norm()
		tsLow, err := newTempSpace(optsLow.TempDir, false, nil)
		Expect(err).NotTo(HaveOccurred())
		defer tsLow.Close()
		mgLow := &merger{opts: optsLow, ts: tsLow}
		outLow := filepath.Join(dir, "low.txt")
		Expect(mgLow.Run(context.Background(), runLow, outLow)).To(Succeed())

		optsHigh := (&Options{OutPath: filepath.Join(dir, "high.txt"), TempDir: filepath.Join(dir, "runs-high"), FanIn: 10000}).norm()
		tsHigh, err := newTempSpace(optsHigh.TempDir, false, nil)
		Expect(err).NotTo(HaveOccurred())
		defer tsHigh.Close()
		mgHigh := &merger{opts: optsHigh, ts: tsHigh}
		outHigh := filepath.Join(dir, "high.txt")
		Expect(mgHigh.Run(context.Background(), runHigh, outHigh)).To(Succeed())

		a, err := os.ReadFile(outLow)
		Expect(err).NotTo(HaveOccurred())
		b, err := os.ReadFile(outHigh)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})
})
