package extract

import "regexp"

const dateWindow = 20

// Date grammars in precedence order.
var dateRes = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`),
	regexp.MustCompile(`\b(?:\d{4}[-/]\d{1,2}[-/]\d{1,2})\b`),
	regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?\s+\d{1,2},\s*\d{2,4}\b`),
}

// Date returns the first date-looking token, preferring the top of the
// receipt before falling back to every line.
func Date(lines []string) (string, bool) {
	head := lines
	if len(head) > dateWindow {
		head = head[:dateWindow]
	}
	if d, ok := firstDate(head); ok {
		return d, true
	}
	return firstDate(lines)
}

func firstDate(lines []string) (string, bool) {
	for _, line := range lines {
		for _, re := range dateRes {
			if m := re.FindString(line); m != "" {
				return m, true
			}
		}
	}
	return "", false
}
