// Package extract turns recognized receipt lines into receipt fields.
//
// Every extractor is an independent rule over an immutable line slice and
// yields an optional result. Nothing here touches images or the OCR engine.
package extract

// DefaultItemStartIndex skips the header block (merchant, address, phone)
// before looking for items.
const DefaultItemStartIndex = 3

// maxItemScore caps the item contribution to a candidate score.
const maxItemScore = 10

// Options tunes extraction.
type Options struct {
	// ItemStartIndex is the first line index eligible for items.
	ItemStartIndex int
}

// DefaultOptions returns the standard extraction options.
func DefaultOptions() Options {
	return Options{ItemStartIndex: DefaultItemStartIndex}
}

// Fields is everything the extractors recovered from one line sequence.
// Absent values are nil.
type Fields struct {
	Merchant *string
	Date     *string
	Subtotal *Match
	Tax      *Match
	Total    *Match
	Items    []Item
	// StopIndex bounds item scanning (exclusive).
	StopIndex int
}

// StopIndex is the earliest matched summary line, or len(lines) if none.
func StopIndex(lines []string, matches ...*Match) int {
	stop := len(lines)
	for _, m := range matches {
		if m != nil && m.Index < stop {
			stop = m.Index
		}
	}
	return stop
}

// Extract runs every field extractor over lines.
func Extract(lines []string, opts Options) Fields {
	var f Fields
	if m, ok := Merchant(lines); ok {
		f.Merchant = &m
	}
	if d, ok := Date(lines); ok {
		f.Date = &d
	}
	f.Subtotal = find(SubtotalRule, lines)
	f.Tax = find(TaxRule, lines)
	f.Total = find(TotalRule, lines)
	f.StopIndex = StopIndex(lines, f.Subtotal, f.Tax, f.Total)
	f.Items = Items(lines, opts.ItemStartIndex, f.StopIndex)
	return f
}

func find(rule KeywordRule, lines []string) *Match {
	m, ok := rule.Find(lines)
	if !ok {
		return nil
	}
	return &m
}

// Score rates how receipt-like a line sequence is: two points for a total,
// one each for tax and subtotal, plus one per item-looking line up to ten.
func Score(lines []string) int {
	score := 0
	if _, ok := TotalRule.Find(lines); ok {
		score += 2
	}
	if _, ok := TaxRule.Find(lines); ok {
		score++
	}
	if _, ok := SubtotalRule.Find(lines); ok {
		score++
	}
	return score + min(maxItemScore, CountItemLines(lines))
}
