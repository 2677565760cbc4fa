package format

import (
	"regexp"
	"strings"

	"github.com/zombor/receipt-ocr/internal/extract"
	"github.com/zombor/receipt-ocr/internal/scanning"
)

var (
	qtyRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	// oneLineItemRe is "QTY [x] DESCRIPTION PRICE".
	oneLineItemRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)(?:\s*[xX])?\s+(.+?)\s+(\$?\d{1,3}(?:[,\s]\d{3})*(?:\.\d{1,2})?)\s*$`)
)

// Column headers OCR tends to scatter on their own lines.
var headerWords = map[string]bool{
	"qty": true, "quantity": true, "item": true, "items": true, "price": true, "amount": true,
}

// window is the current line and the two after it ("" past the end).
type window struct {
	a, b, c string
}

// itemRule recognizes an item at the head of a window and reports how many
// lines it consumed.
type itemRule func(w window) (scanning.StructuredItem, int, bool)

// itemRules are tried in order at every position.
var itemRules = []itemRule{
	singleLineItem,
	qtyDescPriceItem,
	descPriceItem,
	qtyDescLookaheadItem,
}

func isQty(s string) bool { return qtyRe.MatchString(s) }

// singleLineItem: "2 x Coffee $4.00".
func singleLineItem(w window) (scanning.StructuredItem, int, bool) {
	m := oneLineItemRe.FindStringSubmatch(w.a)
	if m == nil {
		return scanning.StructuredItem{}, 0, false
	}
	return scanning.StructuredItem{
		Qty:         m[1],
		Description: strings.Trim(m[2], "- "),
		Price:       extract.NormalizeAmount(m[3]),
	}, 1, true
}

// qtyDescPriceItem: "2" / "Coffee" / "$4.00".
func qtyDescPriceItem(w window) (scanning.StructuredItem, int, bool) {
	if !isQty(w.a) || w.b == "" || !hasTailAmount(w.c) {
		return scanning.StructuredItem{}, 0, false
	}
	return scanning.StructuredItem{Qty: w.a, Description: w.b, Price: extract.NormalizeAmount(w.c)}, 3, true
}

// descPriceItem: "Coffee" / "$4.00".
func descPriceItem(w window) (scanning.StructuredItem, int, bool) {
	if w.b == "" || !hasTailAmount(w.b) || isQty(w.a) {
		return scanning.StructuredItem{}, 0, false
	}
	return scanning.StructuredItem{Description: w.a, Price: extract.NormalizeAmount(w.b)}, 2, true
}

// qtyDescLookaheadItem: "2" / "Coffee" followed by a price line, where the
// description itself is not a number.
func qtyDescLookaheadItem(w window) (scanning.StructuredItem, int, bool) {
	if !isQty(w.a) || w.b == "" || isQty(w.b) || !hasTailAmount(w.c) {
		return scanning.StructuredItem{}, 0, false
	}
	return scanning.StructuredItem{Qty: w.a, Description: w.b, Price: extract.NormalizeAmount(w.c)}, 3, true
}

// ParseStructuredItems greedily walks the lines trying each rule in order.
// Every step consumes at least one line.
func ParseStructuredItems(lines []string) []scanning.StructuredItem {
	filtered := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || headerWords[strings.ToLower(l)] {
			continue
		}
		filtered = append(filtered, l)
	}

	at := func(i int) string {
		if i < len(filtered) {
			return filtered[i]
		}
		return ""
	}

	items := make([]scanning.StructuredItem, 0)
	for i := 0; i < len(filtered); {
		w := window{a: filtered[i], b: at(i + 1), c: at(i + 2)}
		consumed := 1
		for _, rule := range itemRules {
			if item, n, ok := rule(w); ok {
				items = append(items, item)
				consumed = n
				break
			}
		}
		i += consumed
	}
	return items
}
