// Package format re-reads raw receipt lines with simpler, independent rules
// and uses the result to fill gaps the primary extractors left.
package format

import (
	"regexp"
	"strings"

	"github.com/zombor/receipt-ocr/internal/extract"
	"github.com/zombor/receipt-ocr/internal/scanning"
)

var (
	// tailAmountRe matches an amount at the very end of a line.
	tailAmountRe = regexp.MustCompile(`[-+]?\$?\s*\d{1,3}(?:[,\s]\d{3})*(?:\.\d{1,2})?\s*$`)
	totalKeysRe  = regexp.MustCompile(`(?i)(amount\s*due|total\s*due|grand\s*total|\btotal\b|balance\s*due|final\s*total|subtotal|sub\s*total|tax|gst|vat)`)
)

func hasTailAmount(line string) bool {
	return tailAmountRe.MatchString(line)
}

// splitRow cuts a line at its last space when it ends in an amount.
func splitRow(line string) (left, right string) {
	if !hasTailAmount(line) {
		return line, ""
	}
	i := strings.LastIndex(line, " ")
	if i < 0 {
		return line, ""
	}
	return line[:i], extract.NormalizeAmount(line[i+1:])
}

// BuildColumns sorts every non-empty line into items, totals or meta.
// An amount-tailed line without a summary keyword is an item, a line with
// a summary keyword is a total, anything else is meta.
func BuildColumns(lines []string) scanning.Columns {
	cols := scanning.Columns{
		Items:  make([]scanning.Row, 0),
		Totals: make([]scanning.Row, 0),
		Meta:   make([]scanning.Row, 0),
	}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		left, right := splitRow(line)
		isTotal := totalKeysRe.MatchString(line)

		switch {
		case right != "" && !isTotal:
			cols.Items = append(cols.Items, scanning.Row{Left: strings.TrimRight(left, "- "), Right: right})
		case isTotal:
			cols.Totals = append(cols.Totals, scanning.Row{Left: strings.TrimSpace(left), Right: right})
		default:
			cols.Meta = append(cols.Meta, scanning.Row{Left: strings.TrimSpace(left), Right: right})
		}
	}
	return cols
}
