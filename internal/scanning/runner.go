package scanning

import (
	"context"
	"strings"
)

// Recognizer is the recognition engine: PNG bytes in, text out.
// Implementations must surface engine failures as errors.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte, profile Profile) (string, error)
}

// Recognition is the output of one profile over one image.
type Recognition struct {
	Profile Profile
	Text    string
	Lines   []string
}

// SplitLines returns the trimmed, non-empty lines of text in order.
func SplitLines(text string) []string {
	lines := make([]string, 0)
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// RecognizeBest runs every profile over the image and keeps the result with
// the most lines. Only a strictly greater line count replaces the current
// best, so the first profile wins ties. The first engine error stops the run
// and is returned as a *RecognitionError wrapping it.
func RecognizeBest(ctx context.Context, rec Recognizer, png []byte, profiles []Profile) (Recognition, error) {
	best := Recognition{}
	bestCount := -1
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return Recognition{}, err
		}
		text, err := rec.Recognize(ctx, png, p)
		if err != nil {
			return Recognition{}, &RecognitionError{Profile: p.Name(), Err: err}
		}
		lines := SplitLines(text)
		if len(lines) > bestCount {
			bestCount = len(lines)
			best = Recognition{Profile: p, Text: text, Lines: lines}
		}
	}
	return best, nil
}
