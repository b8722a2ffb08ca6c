package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/finvet/internal/model"
)

// Renderer writes reports as JSON, Markdown, and a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Question)
	fmt.Fprintf(&b, "- **Intent:** %s\n", report.Query.Intent)
	if symbols := report.Query.TickerSymbols(); len(symbols) > 0 {
		fmt.Fprintf(&b, "- **Companies:** %s\n", strings.Join(symbols, ", "))
	}
	if metrics := report.Query.MetricIDs(); len(metrics) > 0 {
		fmt.Fprintf(&b, "- **Metrics:** %s\n", strings.Join(metrics, ", "))
	}
	if report.Query.Period != nil {
		fmt.Fprintf(&b, "- **Period:** %s\n", report.Query.Period)
	}
	fmt.Fprintf(&b, "- **Confidence:** %.2f (%d/%d facts verified, %d unverifiable)\n",
		report.Confidence.Score, report.Confidence.VerifiedFacts,
		report.Confidence.TotalFacts, report.Confidence.UnverifiableFacts)
	fmt.Fprintf(&b, "- **Generator:** %s\n", report.Generator)
	b.WriteString("\n")

	for _, w := range report.Query.Warnings {
		fmt.Fprintf(&b, "> ⚠️ %s\n", w)
	}
	if len(report.Query.MissingSlots) > 0 {
		fmt.Fprintf(&b, "> ⚠️ missing: %s\n", strings.Join(report.Query.MissingSlots, ", "))
	}
	if len(report.Query.Warnings) > 0 || len(report.Query.MissingSlots) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Answer\n\n")
	if report.Rejected {
		fmt.Fprintf(&b, "_Answer withheld: confidence %.2f is below the configured minimum._\n\n",
			report.Confidence.Score)
	} else {
		fmt.Fprintf(&b, "%s\n\n", report.FinalAnswer())
		if report.CorrectedAnswer != "" {
			fmt.Fprintf(&b, "### As generated (before correction)\n\n%s\n\n", report.Answer)
		}
	}

	if len(report.Results) > 0 {
		b.WriteString("## Verification\n\n")
		b.WriteString("| Claim | Metric | Company | Verdict | Deviation | Source |\n")
		b.WriteString("|-------|--------|---------|---------|-----------|--------|\n")
		for _, res := range report.Results {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				res.Fact.Literal,
				orDash(res.Fact.Metric), orDash(res.Fact.Ticker),
				verdict(res), deviationCell(res), orDash(res.Source))
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n_Report %s, generated %s. Unverifiable claims are not counted as incorrect._\n",
			report.ID, report.AnsweredAt.Format("2006-01-02 15:04 UTC"))
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// RenderSummary prints a short result summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	if report.Rejected {
		fmt.Printf("✗ Answer withheld (confidence %.2f below minimum)\n", report.Confidence.Score)
		return
	}

	fmt.Println(report.FinalAnswer())
	fmt.Println()
	fmt.Printf("Confidence: %.2f  (%d/%d verified", report.Confidence.Score,
		report.Confidence.VerifiedFacts, report.Confidence.TotalFacts)
	if report.Confidence.UnverifiableFacts > 0 {
		fmt.Printf(", %d unverifiable", report.Confidence.UnverifiableFacts)
	}
	fmt.Println(")")

	if n := report.IncorrectCount(); n > 0 {
		fmt.Printf("⚠️  %d incorrect value(s) found\n", n)
	}
	for _, w := range report.Query.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
}

func verdict(res model.VerificationResult) string {
	switch {
	case !res.Verifiable:
		return "unverifiable"
	case res.IsCorrect:
		return "✓ correct"
	default:
		return "✗ incorrect"
	}
}

func deviationCell(res model.VerificationResult) string {
	if !res.Verifiable {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", res.Deviation)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
