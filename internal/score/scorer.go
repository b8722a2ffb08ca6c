package score

import (
	"github.com/ppiankov/finvet/internal/model"
)

const (
	// uncertaintyFloor is the score when nothing could be verified. Genuine
	// uncertainty, not full confidence and not zero.
	uncertaintyFloor = 0.3

	// verifiedWeight is the share of the score driven by the verified ratio;
	// the remainder is the citation bonus headroom.
	verifiedWeight = 0.85

	perSourceBonus = 0.05
	maxSourceBonus = 0.15
)

// Scorer aggregates per-fact verification results into a single confidence
// score
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate combines the verified ratio among verifiable facts with a bonus
// for independent citations backing the correct facts; a fact that failed
// verification cannot buy confidence with its citation, so adding an
// incorrect fact never raises the score. Unverifiable facts never count
// against the ratio; zero verifiable facts yields the uncertainty floor,
// reported with the true fact counts so "nothing to check" stays distinct
// from "all checks passed".
func (s *Scorer) Calculate(results []model.VerificationResult, sourceCount int) model.ConfidenceScore {
	verifiable := 0
	correct := 0
	distinctSources := make(map[string]bool)

	for _, r := range results {
		if !r.Verifiable {
			continue
		}
		verifiable++
		if r.IsCorrect {
			correct++
			if r.Source != "" {
				distinctSources[r.Source] = true
			}
		}
	}

	sources := len(distinctSources)
	if sourceCount > sources {
		sources = sourceCount
	}

	cs := model.ConfidenceScore{
		VerifiedFacts:     correct,
		TotalFacts:        len(results),
		UnverifiableFacts: len(results) - verifiable,
		SourceCount:       sources,
	}

	if verifiable == 0 {
		cs.Score = uncertaintyFloor
		return cs
	}

	base := verifiedWeight * float64(correct) / float64(verifiable)
	bonus := perSourceBonus * float64(sources)
	if bonus > maxSourceBonus {
		bonus = maxSourceBonus
	}

	cs.Score = base + bonus
	if cs.Score > 1 {
		cs.Score = 1
	}
	return cs
}
