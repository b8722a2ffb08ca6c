package score

import (
	"math"
	"testing"

	"github.com/ppiankov/finvet/internal/model"
)

func verified(correct bool, source string) model.VerificationResult {
	return model.VerificationResult{Verifiable: true, IsCorrect: correct, Source: source}
}

func unverifiable() model.VerificationResult {
	return model.VerificationResult{Verifiable: false}
}

func TestCalculateAllCorrect(t *testing.T) {
	s := NewScorer()

	cs := s.Calculate([]model.VerificationResult{
		verified(true, "10-K"),
		verified(true, "10-Q"),
	}, 0)

	if cs.VerifiedFacts != 2 || cs.TotalFacts != 2 {
		t.Errorf("counts = %d/%d, want 2/2", cs.VerifiedFacts, cs.TotalFacts)
	}
	// 0.85 ratio component plus two distinct sources
	if math.Abs(cs.Score-0.95) > 1e-9 {
		t.Errorf("score = %g, want 0.95", cs.Score)
	}
	if cs.SourceCount != 2 {
		t.Errorf("source count = %d, want 2", cs.SourceCount)
	}
}

func TestCalculateZeroVerifiable(t *testing.T) {
	s := NewScorer()

	cs := s.Calculate([]model.VerificationResult{unverifiable(), unverifiable()}, 1)
	if cs.Score != 0.3 {
		t.Errorf("score = %g, want the 0.3 uncertainty floor", cs.Score)
	}
	if cs.TotalFacts != 2 || cs.UnverifiableFacts != 2 || cs.VerifiedFacts != 0 {
		t.Errorf("counts = %+v, want 2 total, 2 unverifiable, 0 verified", cs)
	}

	// No facts at all is reported distinctly via total_facts = 0
	cs = s.Calculate(nil, 0)
	if cs.Score != 0.3 || cs.TotalFacts != 0 {
		t.Errorf("empty results = %+v, want floor with zero totals", cs)
	}
}

func TestCalculateMonotonicInVerifiedRatio(t *testing.T) {
	s := NewScorer()

	prev := -1.0
	for correct := 0; correct <= 4; correct++ {
		results := make([]model.VerificationResult, 4)
		for i := range results {
			results[i] = verified(i < correct, "10-K")
		}
		cs := s.Calculate(results, 0)
		if cs.Score <= prev {
			t.Fatalf("score not monotonic: %d correct -> %g (prev %g)", correct, cs.Score, prev)
		}
		prev = cs.Score
	}
}

func TestCalculateIncorrectFactNeverRaisesScore(t *testing.T) {
	s := NewScorer()

	// A failed fact with a fresh citation must not buy back confidence
	results := []model.VerificationResult{verified(true, "10-K")}
	for i := 0; i < 9; i++ {
		results = append(results, verified(false, "10-K"))
	}
	prev := s.Calculate(results, 0).Score

	for _, source := range []string{"10-Q", "8-K", "proxy statement"} {
		results = append(results, verified(false, source))
		cs := s.Calculate(results, 0)
		if cs.Score > prev {
			t.Fatalf("adding an incorrect fact (source %q) raised the score: %g -> %g",
				source, prev, cs.Score)
		}
		prev = cs.Score
	}
}

func TestCalculateIncorrectSourcesEarnNoBonus(t *testing.T) {
	s := NewScorer()

	cs := s.Calculate([]model.VerificationResult{
		verified(true, "10-K"),
		verified(false, "10-Q"),
		verified(false, "8-K"),
	}, 0)

	// One correct source only: 0.85/3 + 0.05
	want := 0.85/3 + 0.05
	if math.Abs(cs.Score-want) > 1e-9 {
		t.Errorf("score = %g, want %g", cs.Score, want)
	}
	if cs.SourceCount != 1 {
		t.Errorf("source count = %d, want 1", cs.SourceCount)
	}
}

func TestCalculateEchoedSourceNoExtraBonus(t *testing.T) {
	s := NewScorer()

	echoed := s.Calculate([]model.VerificationResult{
		verified(true, "10-K"), verified(true, "10-K"), verified(true, "10-K"),
	}, 0)
	independent := s.Calculate([]model.VerificationResult{
		verified(true, "10-K"), verified(true, "10-Q"), verified(true, "8-K"),
	}, 0)

	if echoed.Score >= independent.Score {
		t.Errorf("echoed %g should score below independent %g", echoed.Score, independent.Score)
	}
	if echoed.SourceCount != 1 {
		t.Errorf("echoed source count = %d, want 1", echoed.SourceCount)
	}
}

func TestCalculateSourceBonusCapped(t *testing.T) {
	s := NewScorer()

	cs := s.Calculate([]model.VerificationResult{verified(true, "a")}, 10)
	if math.Abs(cs.Score-1.0) > 1e-9 {
		t.Errorf("score = %g, want capped at 1.0", cs.Score)
	}
}

func TestCalculateMixedUnverifiable(t *testing.T) {
	s := NewScorer()

	// One correct of one verifiable; unverifiable facts excluded from ratio
	cs := s.Calculate([]model.VerificationResult{
		verified(true, "10-K"),
		unverifiable(),
	}, 0)

	if cs.UnverifiableFacts != 1 {
		t.Errorf("unverifiable = %d, want 1", cs.UnverifiableFacts)
	}
	if math.Abs(cs.Score-0.9) > 1e-9 {
		t.Errorf("score = %g, want 0.85 + one-source bonus", cs.Score)
	}
}
