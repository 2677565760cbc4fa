package scanning

import (
	"time"

	"github.com/zombor/receipt-ocr/internal/extract"
)

// Assemble builds the record from the winning candidate and its fields.
func Assemble(c Candidate, f extract.Fields, at time.Time) *Receipt {
	items := make([]Item, 0, len(f.Items))
	for _, it := range f.Items {
		amount := it.Amount
		items = append(items, Item{Description: it.Description, Amount: &amount})
	}

	lines := c.Lines
	if lines == nil {
		lines = []string{}
	}

	return &Receipt{
		Meta: Meta{
			PreprocessVariant: c.Variant,
			Timestamp:         at.Format(TimestampLayout),
			Profile:           c.Profile.Name(),
			Score:             c.Score,
		},
		Merchant: f.Merchant,
		Date:     f.Date,
		Totals: Totals{
			Subtotal: matchValue(f.Subtotal),
			Tax:      matchValue(f.Tax),
			Total:    matchValue(f.Total),
		},
		Items:    items,
		RawText:  c.Text,
		RawLines: lines,
	}
}

func matchValue(m *extract.Match) *string {
	if m == nil {
		return nil
	}
	v := m.Value
	return &v
}
