package extract

import (
	"regexp"
	"strings"
)

// KeywordRule is an ordered list of patterns identifying one summary field.
// Patterns are matched against the lowercased line.
type KeywordRule struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Summary field rules, patterns in precedence order.
var (
	TotalRule = KeywordRule{
		Name: "total",
		Patterns: compileAll(
			`amount\s*due`,
			`total\s*due`,
			`\bgrand\s*total\b`,
			`\btotal\b`,
			`balance\s*due`,
			`final\s*total`,
		),
	}
	SubtotalRule = KeywordRule{
		Name: "subtotal",
		Patterns: compileAll(
			`sub\s*total`,
			`subtotal`,
		),
	}
	TaxRule = KeywordRule{
		Name: "tax",
		Patterns: compileAll(
			`sales?\s*tax`,
			`\btax\b`,
			`gst`,
			`vat`,
		),
	}
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// Match is the first line satisfying a KeywordRule.
type Match struct {
	Index   int    `json:"index"`
	Pattern string `json:"pattern"`
	Line    string `json:"line"`
	// Value is the normalized trailing amount of the line.
	Value string `json:"value"`
}

// Find scans lines top to bottom and returns the first line that matches
// any of the rule's patterns and carries a trailing amount. A keyword line
// without an amount does not count and scanning moves on.
func (r KeywordRule) Find(lines []string) (Match, bool) {
	for i, line := range lines {
		low := strings.ToLower(line)
		for _, p := range r.Patterns {
			if !p.MatchString(low) {
				continue
			}
			amt, ok := TrailingAmount(line)
			if !ok {
				break
			}
			return Match{
				Index:   i,
				Pattern: p.String(),
				Line:    line,
				Value:   NormalizeAmount(amt.Raw),
			}, true
		}
	}
	return Match{}, false
}
