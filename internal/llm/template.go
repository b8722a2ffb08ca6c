package llm

import (
	"context"
	"fmt"
	"strings"
)

// TemplateProvider is the offline answer generator. It renders the supplied
// ground-truth facts directly into prose, so answers are deterministic and
// the pipeline works with no API configured.
type TemplateProvider struct{}

// NewTemplateProvider creates the offline provider
func NewTemplateProvider() *TemplateProvider {
	return &TemplateProvider{}
}

// Name returns the provider name
func (p *TemplateProvider) Name() string {
	return "template"
}

// IsAvailable always succeeds; there is nothing to reach
func (p *TemplateProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Generate renders one sentence per fact, plus an honest note when the facts
// do not cover the question.
func (p *TemplateProvider) Generate(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	if len(req.Facts) == 0 {
		return &AnswerResponse{
			Text:  "No financial data is available for the companies and metrics in this question.",
			Model: p.Name(),
		}, nil
	}

	var b strings.Builder
	for i, f := range req.Facts {
		if i > 0 {
			b.WriteString(" ")
		}

		subject := f.Name
		if subject == "" {
			subject = f.Ticker
		}

		period := f.Period
		if period == "" {
			period = "the most recent period"
		}

		fmt.Fprintf(&b, "%s's %s was %s in %s (per %s).",
			subject, readableMetric(f.Metric), FormatValue(f.Value, f.Kind), period, f.Source)
	}

	return &AnswerResponse{Text: b.String(), Model: p.Name()}, nil
}

func readableMetric(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}
