package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/finvet/internal/metric"
	"github.com/ppiankov/finvet/internal/model"
)

// Provider generates prose answers for structured queries
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces an answer grounded in the supplied facts
	Generate(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// FactContext is one ground-truth row handed to the generator. The prompt is
// built only from these rows; the model is told to use nothing else.
type FactContext struct {
	Ticker string
	Name   string // Registered company name, for readable prose
	Metric string
	Kind   metric.ValueKind
	Period string
	Value  float64
	Source string
}

// AnswerRequest is the input for answer generation
type AnswerRequest struct {
	Question  string
	Query     model.StructuredQuery
	Facts     []FactContext
	Model     string // Overrides the configured model when set
	MaxTokens int
}

// AnswerResponse is the generated answer
type AnswerResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// BuildPrompt constructs the default grounded-answer prompt. The supplied
// facts are the only numbers the model may state; verification downstream
// catches anything it invents anyway.
func BuildPrompt(req AnswerRequest) string {
	var b strings.Builder

	b.WriteString("Answer the user's question about company financials using ONLY the facts below.\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. State numbers exactly as given, with their units.\n")
	b.WriteString("2. Name the source filing for each number you use.\n")
	b.WriteString("3. If the facts do not cover the question, say so instead of guessing.\n\n")

	if len(req.Facts) == 0 {
		b.WriteString("Facts: none available for the entities in this question.\n")
	} else {
		b.WriteString("Facts:\n")
		for _, f := range req.Facts {
			fmt.Fprintf(&b, "- %s (%s) %s %s = %s [%s]\n",
				f.Name, f.Ticker, f.Metric, f.Period, FormatValue(f.Value, f.Kind), f.Source)
		}
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", req.Question)
	return b.String()
}

// FormatValue renders a ground-truth value in the store's convention:
// currency scaled to a readable magnitude, percent and ratios as-is.
func FormatValue(value float64, kind metric.ValueKind) string {
	switch kind {
	case metric.ValuePercent:
		return fmt.Sprintf("%.1f%%", value)
	case metric.ValueRatio:
		return fmt.Sprintf("%.1fx", value)
	case metric.ValueShares:
		if value >= 1e9 {
			return fmt.Sprintf("%.2f billion shares", value/1e9)
		}
		return fmt.Sprintf("%.0f shares", value)
	}

	abs := value
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.1f billion", value/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.1f million", value/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.1f thousand", value/1e3)
	default:
		return fmt.Sprintf("$%.2f", value)
	}
}
