package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const merchantWindow = 8

var (
	merchantBannedRe = regexp.MustCompile(`(?i)\b(receipt|invoice|order|transaction|store|market)\b`)
	urlRe            = regexp.MustCompile(`(?i)https?://|www\.`)
	phoneRe          = regexp.MustCompile(`\d{3}[-\s]?\d{3}[-\s]?\d{4}`)
	digitRe          = regexp.MustCompile(`\d`)
)

// merchantCandidate reports whether a header line may name the merchant.
func merchantCandidate(line string) bool {
	if utf8.RuneCountInString(line) < 3 {
		return false
	}
	if merchantBannedRe.MatchString(line) || urlRe.MatchString(line) || phoneRe.MatchString(line) {
		return false
	}
	words := len(strings.Fields(line))
	if digitRe.MatchString(line) && words > 6 {
		return false
	}
	return words >= 1 && words <= 5
}

// Merchant picks the first short, clean line among the top of the receipt.
// When none qualifies the very first line is returned.
func Merchant(lines []string) (string, bool) {
	top := lines
	if len(top) > merchantWindow {
		top = top[:merchantWindow]
	}
	for _, line := range top {
		if merchantCandidate(line) {
			return line, true
		}
	}
	if len(top) == 0 {
		return "", false
	}
	return top[0], true
}
