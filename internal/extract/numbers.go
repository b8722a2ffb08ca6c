package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/finvet/internal/metric"
	"github.com/ppiankov/finvet/internal/model"
	"github.com/ppiankov/finvet/internal/resolve"
	"github.com/ppiankov/finvet/internal/route"
)

const (
	// contextRadius is how many bytes of surrounding text are captured with
	// each fact, and the range searched for its metric and period.
	contextRadius = 80

	// tickerRadius bounds how far a company mention may sit from a number
	// and still claim it in a multi-company answer.
	tickerRadius = 200
)

// factRe matches numeric assertions worth verifying: a currency amount, a
// percentage, or a number with an explicit magnitude suffix. Bare numbers
// (years, counts) deliberately do not match.
var factRe = regexp.MustCompile(
	`(?i)(\$ ?)?(\d[\d,]*(?:\.\d+)?)( ?(?:%|percent(?:age points?)?\b|thousand\b|million\b|billion\b|trillion\b|bn\b|[kmbx]\b))?`)

// FactExtractor scans generated prose for numeric financial assertions. It
// holds no per-call state and is safe for concurrent use.
type FactExtractor struct {
	resolver *resolve.Resolver
	engine   *metric.Engine
}

// NewFactExtractor wires the extractor to the same resolution components the
// understanding stage uses, so an answer and its question agree on what a
// metric or company mention means.
func NewFactExtractor(resolver *resolve.Resolver, engine *metric.Engine) *FactExtractor {
	return &FactExtractor{resolver: resolver, engine: engine}
}

// Extract returns the numeric financial assertions in the text, in order of
// appearance. Input is expected to be plain text; run StripHTML first when
// the generator returns markup.
func (e *FactExtractor) Extract(text string) []model.FinancialFact {
	mentions, _ := e.resolver.Resolve(text)
	subjects := distinctTickers(mentions)

	var facts []model.FinancialFact
	for _, m := range factRe.FindAllStringSubmatchIndex(text, -1) {
		hasCurrency := m[2] >= 0
		hasSuffix := m[6] >= 0
		if !hasCurrency && !hasSuffix {
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(text[m[4]:m[5]], ",", ""), 64)
		if err != nil {
			continue
		}

		unit := model.UnitRaw
		if hasSuffix {
			unit, value = applySuffix(text[m[6]:m[7]], value)
		}

		start, end := m[0], m[1]
		context := contextWindow(text, start, end)

		fact := model.FinancialFact{
			Value:    value,
			Unit:     unit,
			Context:  context,
			Position: start,
			Literal:  text[start:end],
		}

		if best := bestMetric(e.engine.Infer(context)); best != "" {
			fact.Metric = best
		}
		if p := route.ParsePeriod(context); p != nil {
			fact.Period = p.Key()
		}
		fact.Ticker = associateTicker(subjects, mentions, start, end)

		facts = append(facts, fact)
	}

	return facts
}

// applySuffix maps a matched magnitude suffix to a unit. Trillions fold into
// billions since the unit enum stops there.
func applySuffix(suffix string, value float64) (model.Unit, float64) {
	switch strings.ToLower(strings.TrimSpace(suffix)) {
	case "k", "thousand":
		return model.UnitThousand, value
	case "m", "million":
		return model.UnitMillion, value
	case "b", "bn", "billion":
		return model.UnitBillion, value
	case "trillion":
		return model.UnitBillion, value * 1000
	case "x":
		return model.UnitRatio, value
	default:
		// "%", "percent", "percentage point(s)"
		return model.UnitPercent, value
	}
}

// bestMetric picks the highest-priority metric match, if any
func bestMetric(matches []model.MetricMatch) string {
	best := ""
	bestPriority := -1
	for _, m := range matches {
		if m.Priority > bestPriority {
			best = m.MetricID
			bestPriority = m.Priority
		}
	}
	return best
}

// associateTicker assigns a subject company to a fact. A single-subject
// answer claims every fact. In multi-company answers the nearest preceding
// mention wins (the sentence subject comes before its number), falling back
// to the nearest following one; out-of-range facts stay unassigned rather
// than guessed.
func associateTicker(subjects []string, mentions []model.TickerMatch, start, end int) string {
	if len(subjects) == 1 {
		return subjects[0]
	}

	best := ""
	bestDist := tickerRadius + 1
	for _, m := range mentions {
		if m.End > start {
			continue
		}
		if dist := start - m.End; dist < bestDist {
			best = m.Ticker
			bestDist = dist
		}
	}
	if best != "" {
		return best
	}

	for _, m := range mentions {
		if m.Start < end {
			continue
		}
		if dist := m.Start - end; dist < bestDist {
			best = m.Ticker
			bestDist = dist
		}
	}
	return best
}

func contextWindow(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}

func distinctTickers(mentions []model.TickerMatch) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range mentions {
		if !seen[m.Ticker] {
			seen[m.Ticker] = true
			out = append(out, m.Ticker)
		}
	}
	return out
}
