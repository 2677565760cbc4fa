package scanning

import "github.com/zombor/receipt-ocr/internal/extract"

// Candidate is the best recognition of one preprocessing variant.
type Candidate struct {
	Variant string
	Profile Profile
	Text    string
	Lines   []string
	Score   int
}

// NewCandidate scores a variant's recognition.
func NewCandidate(variant string, r Recognition) Candidate {
	return Candidate{
		Variant: variant,
		Profile: r.Profile,
		Text:    r.Text,
		Lines:   r.Lines,
		Score:   extract.Score(r.Lines),
	}
}

// SelectBest reduces candidates to the highest score. A later candidate
// replaces the current one only with a strictly greater score, so the first
// maximum in slice order wins.
func SelectBest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, true
}
