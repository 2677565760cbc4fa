package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TrailingAmount", func() {
	It("should return the last number-like token", func() {
		amt, ok := TrailingAmount("2 x Coffee $4.00")
		Expect(ok).To(BeTrue())
		Expect(amt.Raw).To(Equal("$4.00"))
	})

	It("should remove whitespace from grouped tokens", func() {
		amt, ok := TrailingAmount("TOTAL 1 234.50")
		Expect(ok).To(BeTrue())
		Expect(amt.Raw).To(Equal("1234.50"))
	})

	It("should report the offset of the token", func() {
		amt, _ := TrailingAmount("Burger  $8.99")
		Expect(amt.Start).To(Equal(8))
	})

	It("should report absence when no digits are present", func() {
		_, ok := TrailingAmount("THANK YOU")
		Expect(ok).To(BeFalse())
	})
})

var _ = DescribeTable("NormalizeAmount",
	func(in, expected string) {
		Expect(NormalizeAmount(in)).To(Equal(expected))
	},
	Entry("plain", "12.49", "12.49"),
	Entry("currency prefix", "$8.99", "8.99"),
	Entry("thousands grouping", "1,234.50", "1234.50"),
	Entry("no fraction", "$7", "7.00"),
	Entry("surrounding spaces", "  $ 3.5 ", "3.50"),
	Entry("negative", "-$2.00", "-2.00"),
	Entry("explicit plus", "+4", "4.00"),
	Entry("unparseable is trimmed", "  N/A ", "N/A"),
	Entry("empty", "", ""),
)

var _ = Describe("NormalizeAmount idempotence", func() {
	for _, in := range []string{"$1,234.50", "7", "-$2", "0.1", "$ 12 345.67", "+3.30"} {
		It("should be stable for "+in, func() {
			once := NormalizeAmount(in)
			Expect(NormalizeAmount(once)).To(Equal(once))
			Expect(once).To(MatchRegexp(`^-?\d+\.\d{2}$`))
		})
	}
})

var _ = Describe("TotalRule", func() {
	It("should normalize a grouped grand total", func() {
		m, ok := TotalRule.Find([]string{"Items 3", "GRAND TOTAL 1,234.50"})
		Expect(ok).To(BeTrue())
		Expect(m.Value).To(Equal("1234.50"))
		Expect(m.Index).To(Equal(1))
		Expect(m.Pattern).To(Equal(`\bgrand\s*total\b`))
	})

	It("should skip keyword lines without an amount", func() {
		m, ok := TotalRule.Find([]string{"TOTAL", "----", "Total due 9.99"})
		Expect(ok).To(BeTrue())
		Expect(m.Index).To(Equal(2))
	})

	It("should prefer the earliest line over a stronger pattern", func() {
		m, ok := TotalRule.Find([]string{"Total 5.00", "Amount due 6.00"})
		Expect(ok).To(BeTrue())
		Expect(m.Value).To(Equal("5.00"))
	})

	It("should not treat a subtotal as a total", func() {
		_, ok := TotalRule.Find([]string{"Subtotal 4.00"})
		Expect(ok).To(BeFalse())
	})
})
