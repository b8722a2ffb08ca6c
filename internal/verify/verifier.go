package verify

import (
	"fmt"
	"math"

	"github.com/ppiankov/finvet/internal/facts"
	"github.com/ppiankov/finvet/internal/metric"
	"github.com/ppiankov/finvet/internal/model"
)

const defaultMaxDeviationPct = 5.0

// Verifier checks extracted facts against the ground-truth store. A fact with
// no ground-truth row is unverifiable, never incorrect; only a real value
// disagreement produces a failed verdict.
type Verifier struct {
	store           facts.Store
	catalog         *metric.Catalog
	maxDeviationPct float64
}

// NewVerifier creates a verifier with the configured deviation tolerance
func NewVerifier(store facts.Store, catalog *metric.Catalog, cfg model.VerificationConfig) *Verifier {
	maxDev := cfg.MaxDeviationPct
	if maxDev <= 0 {
		maxDev = defaultMaxDeviationPct
	}
	return &Verifier{store: store, catalog: catalog, maxDeviationPct: maxDev}
}

// VerifyAll verifies facts in order
func (v *Verifier) VerifyAll(extracted []model.FinancialFact) []model.VerificationResult {
	results := make([]model.VerificationResult, 0, len(extracted))
	for _, f := range extracted {
		results = append(results, v.Verify(f))
	}
	return results
}

// Verify checks one fact. Units are normalized to the metric's canonical
// convention before comparing; a claim whose unit cannot express the metric
// (a percentage offered for a currency line item) is unverifiable.
func (v *Verifier) Verify(fact model.FinancialFact) model.VerificationResult {
	result := model.VerificationResult{Fact: fact}

	if fact.Ticker == "" {
		result.Message = "no company associated with this value"
		return result
	}
	if fact.Metric == "" {
		result.Message = "no metric associated with this value"
		return result
	}

	def, ok := v.catalog.Get(fact.Metric)
	if !ok {
		result.Message = fmt.Sprintf("unknown metric %q", fact.Metric)
		return result
	}

	actual, found := v.store.Lookup(fact.Ticker, fact.Metric, fact.Period)
	if !found {
		result.Message = fmt.Sprintf("no ground truth for %s %s", fact.Ticker, fact.Metric)
		return result
	}

	extracted, ok := normalize(fact, def.Unit)
	if !ok {
		result.Message = fmt.Sprintf("unit %s cannot express a %s metric", fact.Unit, def.Unit)
		return result
	}

	result.Verifiable = true
	result.Source = actual.Source
	actualValue := actual.Amount
	result.ActualValue = &actualValue

	if actualValue == 0 {
		result.IsCorrect = extracted == 0
		if !result.IsCorrect {
			result.Deviation = 100
			result.Message = "ground truth is zero but a nonzero value was stated"
		}
		result.Confidence = boolConfidence(result.IsCorrect)
		return result
	}

	result.Deviation = math.Abs(extracted-actualValue) / math.Abs(actualValue) * 100
	result.IsCorrect = result.Deviation <= v.maxDeviationPct
	result.Confidence = clamp01(1 - result.Deviation/100)

	if !result.IsCorrect {
		result.Message = fmt.Sprintf("stated %s deviates %.1f%% from %s", fact.Literal, result.Deviation, actual.Source)
	}
	return result
}

// normalize converts an extracted value into the store's convention for the
// metric: raw units for currency and share counts, percent for percent
// metrics, the dimensionless multiple for ratios.
func normalize(fact model.FinancialFact, kind metric.ValueKind) (float64, bool) {
	switch kind {
	case metric.ValuePercent:
		switch fact.Unit {
		case model.UnitPercent, model.UnitRaw:
			return fact.Value, true
		case model.UnitRatio:
			return fact.Value * 100, true
		}
		return 0, false
	case metric.ValueRatio:
		switch fact.Unit {
		case model.UnitRatio, model.UnitRaw:
			return fact.Value, true
		case model.UnitPercent:
			return fact.Value / 100, true
		}
		return 0, false
	default: // currency, shares
		switch fact.Unit {
		case model.UnitPercent, model.UnitRatio:
			return 0, false
		}
		return fact.Value * fact.Unit.Multiplier(), true
	}
}

func boolConfidence(correct bool) float64 {
	if correct {
		return 1
	}
	return 0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
