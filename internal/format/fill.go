package format

import (
	"regexp"
	"strings"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

var relaxedDateRe = regexp.MustCompile(`\b\d{1,2}[^0-9A-Za-z]\d{1,2}[^0-9A-Za-z]\d{2,4}\b`)

// Enrich returns a copy of r with the two-column view and structured items
// attached, and with absent merchant, date and totals filled from them.
// Populated fields are never changed and r itself is not modified.
func Enrich(r *scanning.Receipt) *scanning.Receipt {
	out := *r
	cols := BuildColumns(r.RawLines)
	out.Columns = &cols
	out.StructuredItems = ParseStructuredItems(r.RawLines)

	if absent(out.Totals.Subtotal) {
		out.Totals.Subtotal = firstTotal(cols.Totals, label{"subtotal", ""}, label{"sub total", ""})
	}
	if absent(out.Totals.Tax) {
		out.Totals.Tax = firstTotal(cols.Totals, label{"tax", ""}, label{"vat", ""}, label{"gst", ""})
	}
	if absent(out.Totals.Total) {
		out.Totals.Total = firstTotal(cols.Totals, label{"grand total", ""}, label{"amount due", ""}, label{"total", "sub"})
	}

	if absent(out.Merchant) {
		out.Merchant = merchantFallback(cols.Meta, r.RawLines)
	}
	if absent(out.Date) {
		for _, line := range r.RawLines {
			if m := relaxedDateRe.FindString(line); m != "" {
				out.Date = &m
				break
			}
		}
	}
	return &out
}

func absent(s *string) bool {
	return s == nil || *s == ""
}

// label is a substring to look for in a totals row and one that disqualifies it.
type label struct {
	contains string
	excludes string
}

// firstTotal tries labels in order. For each label the first row whose left
// side contains it decides: its amount is used, or the next label is tried
// when the row has none.
func firstTotal(rows []scanning.Row, labels ...label) *string {
	for _, l := range labels {
		for _, row := range rows {
			left := strings.ToLower(row.Left)
			if !strings.Contains(left, l.contains) {
				continue
			}
			if l.excludes != "" && strings.Contains(left, l.excludes) {
				continue
			}
			if row.Right != "" {
				v := row.Right
				return &v
			}
			break
		}
	}
	return nil
}

func merchantFallback(meta []scanning.Row, raw []string) *string {
	if len(meta) > 0 {
		v := meta[0].Left
		if v == "" {
			v = meta[0].Right
		}
		if v != "" {
			return &v
		}
		return nil
	}
	for _, line := range raw {
		if l := strings.TrimSpace(line); l != "" {
			return &l
		}
	}
	return nil
}
