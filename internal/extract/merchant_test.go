package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("Merchant",
	func(lines []string, expected string, found bool) {
		m, ok := Merchant(lines)
		Expect(ok).To(Equal(found))
		Expect(m).To(Equal(expected))
	},
	Entry("first clean line", []string{"Joe's Diner", "123 Main St"}, "Joe's Diner", true),
	Entry("skips too-short lines", []string{"**", "Bean Counter"}, "Bean Counter", true),
	Entry("skips banned words", []string{"SALES RECEIPT", "Store #42", "Trader Bob's"}, "Trader Bob's", true),
	Entry("skips urls", []string{"www.shop.com", "Shop Co"}, "Shop Co", true),
	Entry("skips phone numbers", []string{"Tel 555-123-4567", "Harbor Deli"}, "Harbor Deli", true),
	Entry("skips long lines with digits", []string{"Aisle 12 of many things on the list", "Pho 88"}, "Pho 88", true),
	Entry("skips lines with too many words", []string{"Thank you for shopping with us today", "Deli"}, "Deli", true),
	Entry("falls back to the first line", []string{"www.example.com", "555 123 4567"}, "www.example.com", true),
	Entry("absent without lines", []string{}, "", false),
)

var _ = Describe("Merchant window", func() {
	It("should only look at the first eight lines", func() {
		lines := []string{"RECEIPT", "RECEIPT", "RECEIPT", "RECEIPT", "RECEIPT", "RECEIPT", "RECEIPT", "RECEIPT", "Late Name"}
		m, ok := Merchant(lines)
		Expect(ok).To(BeTrue())
		Expect(m).To(Equal("RECEIPT"))
	})
})

var _ = DescribeTable("Date",
	func(lines []string, expected string, found bool) {
		d, ok := Date(lines)
		Expect(ok).To(Equal(found))
		Expect(d).To(Equal(expected))
	},
	Entry("numeric with slashes", []string{"Date: 4/7/24"}, "4/7/24", true),
	Entry("numeric with dashes", []string{"07-04-2024 12:00"}, "07-04-2024", true),
	Entry("year first", []string{"2024/07/04"}, "2024/07/04", true),
	Entry("month name", []string{"Visited Jul 4, 2024"}, "Jul 4, 2024", true),
	Entry("abbreviated month with a period", []string{"Sept. 12, 2023"}, "Sept. 12, 2023", true),
	Entry("case-insensitive month", []string{"JAN 2, 24"}, "JAN 2, 24", true),
	Entry("first grammar wins on a line", []string{"2024-01-05 or 01/05/2024"}, "01/05/2024", true),
	Entry("none", []string{"no date here"}, "", false),
)

var _ = Describe("Date window", func() {
	It("should fall back to lines past the first twenty", func() {
		lines := make([]string, 25)
		for i := range lines {
			lines[i] = "line"
		}
		lines[22] = "Printed 12/31/2023"
		d, ok := Date(lines)
		Expect(ok).To(BeTrue())
		Expect(d).To(Equal("12/31/2023"))
	})
})
