package extract

import (
	"regexp"
	"strings"
)

// Words that mark a line as a summary or payment line rather than an item.
var nonItemWords = []string{
	"subtotal", "sub total", "tax", "total", "amount due",
	"balance", "change", "tender", "cash", "credit",
}

var (
	letterRe    = regexp.MustCompile(`[A-Za-z]`)
	qtyPrefixRe = regexp.MustCompile(`^\s*\d+\s*[xX]\s*`)
)

// Item is one purchased line.
type Item struct {
	Description string
	// Amount is normalized.
	Amount string
}

// IsItemLine reports whether the line looks like "<description> <amount>".
func IsItemLine(line string) bool {
	amt, ok := TrailingAmount(line)
	if !ok {
		return false
	}
	low := strings.ToLower(line)
	for _, w := range nonItemWords {
		if strings.Contains(low, w) {
			return false
		}
	}
	return letterRe.MatchString(line[:amt.Start])
}

// Items collects item lines from lines[start:stop], preserving order.
// Bounds are clamped to the slice.
func Items(lines []string, start, stop int) []Item {
	stop = min(stop, len(lines))
	start = max(start, 0)

	items := make([]Item, 0)
	for i := start; i < stop; i++ {
		line := lines[i]
		if !IsItemLine(line) {
			continue
		}
		amt, _ := TrailingAmount(line)
		desc := strings.TrimSpace(line[:amt.Start])
		desc = strings.TrimSpace(qtyPrefixRe.ReplaceAllString(desc, ""))
		items = append(items, Item{
			Description: desc,
			Amount:      NormalizeAmount(amt.Raw),
		})
	}
	return items
}

// CountItemLines counts item-looking lines anywhere in the sequence.
func CountItemLines(lines []string) int {
	n := 0
	for _, line := range lines {
		if IsItemLine(line) {
			n++
		}
	}
	return n
}
