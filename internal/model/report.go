package model

import "time"

// Report is the complete result of answering and vetting one question
type Report struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	AnsweredAt time.Time `json:"answered_at"`

	Query StructuredQuery `json:"query"` // What the question was understood to ask

	Answer          string `json:"answer"`                     // Prose as generated
	CorrectedAnswer string `json:"corrected_answer,omitempty"` // Prose after correction, when it differs
	Rejected        bool   `json:"rejected,omitempty"`         // Strict mode: answer withheld

	Facts      []FinancialFact      `json:"facts"`
	Results    []VerificationResult `json:"results"`
	Confidence ConfidenceScore      `json:"confidence"`

	Generator string `json:"generator,omitempty"` // Provider/model that produced the answer
	LatencyMS int    `json:"latency_ms"`
}

// FinalAnswer returns the text the caller should show: the corrected answer
// when correction produced one, otherwise the original prose.
func (r *Report) FinalAnswer() string {
	if r.Rejected {
		return ""
	}
	if r.CorrectedAnswer != "" {
		return r.CorrectedAnswer
	}
	return r.Answer
}

// IncorrectCount returns the number of facts that failed verification
func (r *Report) IncorrectCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Verifiable && !res.IsCorrect {
			n++
		}
	}
	return n
}
