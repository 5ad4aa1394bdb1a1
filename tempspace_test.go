package lexsort

import (
	"os"
	"path/filepath"

	. "github.com/bsm/ginkgo/v2"
	. "github.com/bsm/gomega"
)

var _ = Describe("TempSpace", func() {
	var root string

	BeforeEach(func() {
		base, err := os.MkdirTemp("", "lexsort-ts-")
		Expect(err).NotTo(HaveOccurred())
		root = filepath.Join(base, "runs")
		DeferCleanup(func() { _ = os.RemoveAll(base) })
	})

	It("creates the root directory on construction and mints unique names", func() {
		ts, err := newTempSpace(root, false, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(root).To(BeADirectory())

		a := ts.NewName()
		b := ts.NewName()
		Expect(a).NotTo(Equal(b))
		Expect(filepath.Dir(a)).To(Equal(root))
	})

	It("nests pass directories under the root", func() {
		ts, err := newTempSpace(root, false, nil)
		Expect(err).NotTo(HaveOccurred())

		dir, err := ts.PassDir(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(dir).To(Equal(filepath.Join(root, "pass-0")))
		Expect(dir).To(BeADirectory())
	})

	It("removes everything it created on Close", func() {
		ts, err := newTempSpace(root, false, nil)
		Expect(err).NotTo(HaveOccurred())

		name := ts.NewName()
		Expect(os.WriteFile(name, []byte("x"), 0o644)).To(Succeed())

		ts.Close()
		Expect(root).NotTo(BeADirectory())
	})

	It("leaves the directory alone when KeepTemp is set", func() {
		ts, err := newTempSpace(root, true, nil)
		Expect(err).NotTo(HaveOccurred())

		ts.Close()
		Expect(root).To(BeADirectory())
	})

	It("does not remove a pre-existing directory it did not create", func() {
		Expect(os.MkdirAll(root, 0o755)).To(Succeed())

		ts, err := newTempSpace(root, false, nil)
		Expect(err).NotTo(HaveOccurred())

		ts.Close()
		Expect(root).To(BeADirectory())
	})
})
