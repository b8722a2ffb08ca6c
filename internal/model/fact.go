package model

// Unit is the magnitude/kind of an extracted numeric value
type Unit string

const (
	UnitRaw      Unit = "raw"
	UnitThousand Unit = "thousand"
	UnitMillion  Unit = "million"
	UnitBillion  Unit = "billion"
	UnitPercent  Unit = "percent"
	UnitRatio    Unit = "ratio"
)

// Multiplier returns the scale factor to convert a value in this unit to raw.
// Percent and ratio are dimensionless; callers normalize them against the
// metric's canonical unit instead.
func (u Unit) Multiplier() float64 {
	switch u {
	case UnitThousand:
		return 1e3
	case UnitMillion:
		return 1e6
	case UnitBillion:
		return 1e9
	default:
		return 1
	}
}

// FinancialFact is a numeric financial assertion extracted from generated
// prose. Facts live for one verification pass and are discarded after scoring.
type FinancialFact struct {
	Value    float64 `json:"value"`
	Unit     Unit    `json:"unit"`
	Metric   string  `json:"metric,omitempty"` // Canonical metric ID, if inferable
	Ticker   string  `json:"ticker,omitempty"` // Subject company, if inferable
	Period   string  `json:"period,omitempty"` // Period key, if stated
	Context  string  `json:"context"`          // Snippet surrounding the number
	Position int     `json:"position"`         // Byte offset of the literal in the source text
	Literal  string  `json:"literal"`          // Exact matched text (e.g. "$394.3B")
}

// VerificationResult is the verdict for a single extracted fact
type VerificationResult struct {
	Fact        FinancialFact `json:"fact"`
	Verifiable  bool          `json:"verifiable"` // False when no ground-truth row exists
	IsCorrect   bool          `json:"is_correct"`
	ActualValue *float64      `json:"actual_value,omitempty"`
	Deviation   float64       `json:"deviation"` // Percent difference from ground truth
	Confidence  float64       `json:"confidence"`
	Source      string        `json:"source,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// ConfidenceScore aggregates per-fact verification into a single [0,1] score
type ConfidenceScore struct {
	Score             float64 `json:"score"`
	VerifiedFacts     int     `json:"verified_facts"`
	TotalFacts        int     `json:"total_facts"`
	UnverifiableFacts int     `json:"unverifiable_facts"`
	SourceCount       int     `json:"source_count"`
}
