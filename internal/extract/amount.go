package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyPattern matches a number-like token: optional sign, optional
// dollar prefix, thousands grouping by comma or space, optional 2-digit
// fraction.
const currencyPattern = `[-+]?\$?\s*\d{1,3}(?:[,\s]\d{3})*(?:\.\d{2})?`

var amountRe = regexp.MustCompile(currencyPattern)

// Amount is a trailing number-like token found on a line.
type Amount struct {
	// Raw is the matched token with whitespace removed.
	Raw string
	// Start is the byte offset of the match in the line.
	Start int
}

// TrailingAmount returns the last number-like token on the line.
func TrailingAmount(line string) (Amount, bool) {
	locs := amountRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return Amount{}, false
	}
	last := locs[len(locs)-1]
	raw := strings.Join(strings.Fields(line[last[0]:last[1]]), "")
	return Amount{Raw: raw, Start: last[0]}, true
}

// NormalizeAmount renders an amount token as a fixed-point string with two
// fractional digits. Tokens that do not parse are returned trimmed.
func NormalizeAmount(value string) string {
	trimmed := strings.TrimSpace(value)
	v := strings.Join(strings.Fields(trimmed), "")

	sign := ""
	if strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		sign, v = v[:1], v[1:]
	}
	v = strings.TrimPrefix(v, "$")
	v = strings.ReplaceAll(v, ",", "")
	if sign == "-" {
		v = sign + v
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return trimmed
	}
	return d.StringFixed(2)
}
