package lexsort

import (
	. "github.com/bsm/ginkgo/v2"
	. "github.com/bsm/gomega"
)

var _ = Describe("tryParseLine", func() {
	It("parses a well-formed line", func() {
		n, text, ok := tryParseLine([]byte("7. hello"))
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(uint32(7)))
		Expect(string(text)).To(Equal("hello"))
	})

	It("keeps the remainder verbatim, including further dots and spaces", func() {
		n, text, ok := tryParseLine([]byte("10. a.b. c"))
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(uint32(10)))
		Expect(string(text)).To(Equal("a.b. c"))
	})

	DescribeTable("rejects malformed lines",
		func(line string) {
			_, _, ok := tryParseLine([]byte(line))
			Expect(ok).To(BeFalse())
		},
		Entry("no dot", "hello"),
		Entry("dot at position 0", ".hello"),
		Entry("no space after dot", "3.a"),
		Entry("dot with nothing after", "."),
		Entry("empty text after dot-space", "1. "),
		Entry("non-digit before dot", "1a. hi"),
		Entry("signed number", "-1. hi"),
		Entry("overflow beyond the signed 32-bit range", "3000000000. x"),
		Entry("overflow far beyond any integer width", "99999999999999999999. hi"),
	)
})

var _ = Describe("compareRecords", func() {
	mk := func(n uint32, text string) *Record {
		r := newRecord()
		r.set(n, []byte(text))
		return r
	}

	It("orders primarily by ordinal text bytes", func() {
		a := mk(1, "B")
		b := mk(1, "a")
		defer a.Release()
		defer b.Release()
		// 0x42 < 0x61: "B" sorts before "a" under byte-ordinal comparison.
		Expect(compareRecords(a, b)).To(BeNumerically("<", 0))
	})

	It("treats a shorter prefix as smaller", func() {
		a := mk(1, "Apple")
		b := mk(1, "Apple is tasty")
		defer a.Release()
		defer b.Release()
		Expect(compareRecords(a, b)).To(BeNumerically("<", 0))
	})

	It("breaks ties on text by ascending number", func() {
		a := mk(2, "Banana")
		b := mk(1, "Banana")
		defer a.Release()
		defer b.Release()
		Expect(compareRecords(a, b)).To(BeNumerically(">", 0))
	})

	It("is reflexively equal", func() {
		a := mk(5, "Apple")
		b := mk(5, "Apple")
		defer a.Release()
		defer b.Release()
		Expect(compareRecords(a, b)).To(Equal(0))
	})
})
