package correct

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/finvet/internal/model"
)

var numberRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// Corrector rewrites or annotates answer prose whose numeric claims failed
// verification. Unverifiable facts are left untouched; only a proven
// disagreement with ground truth changes the text.
type Corrector struct {
	autoCorrect bool
}

// NewCorrector creates a corrector. With auto-correct disabled, failed
// numbers are annotated in place instead of replaced.
func NewCorrector(cfg model.VerificationConfig) *Corrector {
	return &Corrector{autoCorrect: cfg.AutoCorrect}
}

// Apply fixes the failed claims in text and returns the result plus the
// number of edits. Edits run right to left so earlier byte offsets stay
// valid while later ones are rewritten.
func (c *Corrector) Apply(text string, results []model.VerificationResult) (string, int) {
	var failed []model.VerificationResult
	for _, r := range results {
		if r.Verifiable && !r.IsCorrect && r.ActualValue != nil {
			failed = append(failed, r)
		}
	}
	sort.SliceStable(failed, func(a, b int) bool {
		return failed[a].Fact.Position > failed[b].Fact.Position
	})

	edits := 0
	for _, r := range failed {
		pos, literal := r.Fact.Position, r.Fact.Literal
		if pos < 0 || pos+len(literal) > len(text) || text[pos:pos+len(literal)] != literal {
			// The text shifted out from under us; do not guess
			continue
		}

		var replacement string
		if c.autoCorrect {
			replacement = rewriteLiteral(literal, *r.ActualValue, r.Fact.Unit)
		} else {
			replacement = literal + annotation(literal, r)
		}

		text = text[:pos] + replacement + text[pos+len(literal):]
		edits++
	}

	return text, edits
}

// rewriteLiteral swaps the numeric part of a literal for the ground-truth
// value, preserving the original currency sign and magnitude suffix so the
// corrected sentence reads like the original.
func rewriteLiteral(literal string, actual float64, unit model.Unit) string {
	return numberRe.ReplaceAllString(literal, formatValue(actual, unit))
}

func annotation(literal string, r model.VerificationResult) string {
	corrected := rewriteLiteral(literal, *r.ActualValue, r.Fact.Unit)
	if r.Source != "" {
		return fmt.Sprintf(" [incorrect: %s per %s]", corrected, r.Source)
	}
	return fmt.Sprintf(" [incorrect: %s]", corrected)
}

// formatValue renders the ground-truth value in the literal's own magnitude,
// rounded to at most two decimals.
func formatValue(actual float64, unit model.Unit) string {
	v := actual
	switch unit {
	case model.UnitThousand, model.UnitMillion, model.UnitBillion:
		v = actual / unit.Multiplier()
	}
	v = math.Round(v*100) / 100
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(v, 'f', 2, 64), "0"), ".")
}
