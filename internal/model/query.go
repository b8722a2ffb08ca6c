package model

import "fmt"

// Intent classifies the high-level goal of a question
type Intent string

const (
	IntentLookup        Intent = "lookup"         // Single metric value for a company
	IntentCompare       Intent = "compare"        // Two or more companies side by side
	IntentTrend         Intent = "trend"          // Metric over time
	IntentRank          Intent = "rank"           // Order companies by a metric
	IntentForecast      Intent = "forecast"       // Forward-looking estimate
	IntentRecommend     Intent = "recommend"      // Buy/sell/hold style question
	IntentRiskAnalysis  Intent = "risk_analysis"  // Downside/risk assessment
	IntentValuation     Intent = "valuation"      // Over/undervalued, fair value
	IntentQualityCheck  Intent = "quality_check"  // Data coverage/completeness
	IntentExplainMetric Intent = "explain_metric" // Definition of a metric
	IntentComputeKPI    Intent = "compute_kpi"    // Derived KPI for a specific period
	IntentSourceLookup  Intent = "source_lookup"  // Where a number comes from
)

// MatchKind indicates how a ticker mention was resolved
type MatchKind string

const (
	MatchExact MatchKind = "exact" // Bare ticker symbol
	MatchAlias MatchKind = "alias" // Registered company-name alias
	MatchFuzzy MatchKind = "fuzzy" // Edit-distance match against the alias set
)

// Precedence returns the tie-breaking rank of a match kind (lower wins)
func (k MatchKind) Precedence() int {
	switch k {
	case MatchExact:
		return 0
	case MatchAlias:
		return 1
	case MatchFuzzy:
		return 2
	default:
		return 3
	}
}

// TickerMatch is a resolved company mention in question or answer text
type TickerMatch struct {
	Ticker        string    `json:"ticker"`
	MatchedPhrase string    `json:"matched_phrase"`
	Kind          MatchKind `json:"match_kind"`
	Score         float64   `json:"score"`
	Start         int       `json:"start"` // Byte offset in input text
	End           int       `json:"end"`
}

// MetricMatch is a recognized financial-metric reference
type MetricMatch struct {
	MetricID    string   `json:"metric_id"`            // Canonical catalog identifier
	SurfaceForm string   `json:"surface_form"`         // Text as it appeared
	Priority    int      `json:"pattern_priority"`     // Priority of the matching pattern
	ValueHint   *float64 `json:"value_hint,omitempty"` // Magnitude mentioned next to the metric, if any
}

// PeriodKind distinguishes fiscal-year from quarterly periods
type PeriodKind string

const (
	PeriodFY PeriodKind = "FY"
	PeriodQ1 PeriodKind = "Q1"
	PeriodQ2 PeriodKind = "Q2"
	PeriodQ3 PeriodKind = "Q3"
	PeriodQ4 PeriodKind = "Q4"
)

// Period is an explicit fiscal period mentioned in a question
type Period struct {
	Year int        `json:"year"`
	Kind PeriodKind `json:"kind"`
}

// Key returns the canonical period key used by the facts store (e.g. "2024-FY")
func (p Period) Key() string {
	if p.Year == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%s", p.Year, p.Kind)
}

func (p Period) String() string {
	if p.Kind == PeriodFY {
		return fmt.Sprintf("FY%d", p.Year)
	}
	return fmt.Sprintf("%s %d", p.Kind, p.Year)
}

// StructuredQuery is the machine-usable representation of a question.
// It is created once per incoming question and never mutated afterwards.
type StructuredQuery struct {
	Intent           Intent        `json:"intent"`
	Tickers          []TickerMatch `json:"tickers"`
	Metrics          []MetricMatch `json:"metrics"`
	Period           *Period       `json:"period,omitempty"`
	ComparisonTarget string        `json:"comparison_target,omitempty"`
	MissingSlots     []string      `json:"missing_slots,omitempty"` // Required slots the question did not supply
	Warnings         []string      `json:"warnings,omitempty"`      // Ambiguity/unresolved-entity conditions
	LowConfidence    bool          `json:"low_confidence,omitempty"`
	RawText          string        `json:"raw_text"`
}

// TickerSymbols returns the distinct resolved ticker symbols in order
func (q *StructuredQuery) TickerSymbols() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range q.Tickers {
		if !seen[m.Ticker] {
			seen[m.Ticker] = true
			out = append(out, m.Ticker)
		}
	}
	return out
}

// MetricIDs returns the distinct canonical metric identifiers in order
func (q *StructuredQuery) MetricIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range q.Metrics {
		if !seen[m.MetricID] {
			seen[m.MetricID] = true
			out = append(out, m.MetricID)
		}
	}
	return out
}
