package route

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/finvet/internal/metric"
	"github.com/ppiankov/finvet/internal/model"
	"github.com/ppiankov/finvet/internal/resolve"
	"github.com/ppiankov/finvet/internal/universe"
)

const anaphorScore = 0.9

// Context is per-conversation state owned by the caller. The router never
// stores it; every call receives the context explicitly so concurrent
// conversations cannot bleed into each other.
type Context struct {
	LastTickers []string // Most recent last
}

// Remember records the companies a question resolved to so later pronouns can
// refer back to them. Questions that resolved no companies leave the previous
// referents in place.
func (c *Context) Remember(symbols []string) {
	if len(symbols) > 0 {
		c.LastTickers = symbols
	}
}

// Router turns a free-text question into a StructuredQuery. Classification is
// a first-match scan over an ordered rule table; no rule matching means a
// default lookup intent flagged low-confidence, never a guess dressed up as
// certainty.
type Router struct {
	universe *universe.Repository
	engine   *metric.Engine
	cfg      model.ResolverConfig
}

// NewRouter wires the router to its resolution inputs
func NewRouter(repo *universe.Repository, engine *metric.Engine, cfg model.ResolverConfig) *Router {
	return &Router{universe: repo, engine: engine, cfg: cfg}
}

// intentRule is one classification rule: substring cues over the padded
// lowercased text, plus an optional slot-based guard. Cues carry their own
// word boundaries as spaces.
type intentRule struct {
	intent model.Intent
	cues   []string
	when   func(text string, tickers []model.TickerMatch, metrics []model.MetricMatch) bool
}

// intentRules are evaluated in order; the first satisfied rule wins
var intentRules = []intentRule{
	{intent: model.IntentQualityCheck, cues: []string{
		" is it true ", " is that true", " is that right", " is that correct",
		" is this correct", " fact check", " fact-check", " verify ", " double check",
	}},
	{intent: model.IntentSourceLookup, cues: []string{
		" source ", " sources ", " citation", " cited ", " where did ",
		" where does ", " according to what", " which filing", " 10-k", " 10-q",
	}},
	{intent: model.IntentComputeKPI, cues: []string{
		" calculate ", " compute ", " work out ", " derive ",
	}},
	{intent: model.IntentCompare, cues: []string{
		" compare ", " compared to ", " versus ", " vs ", " vs. ",
		" better than ", " worse than ", " against ",
	}},
	{intent: model.IntentRank, cues: []string{
		" rank ", " ranking ", " top ", " highest ", " lowest ", " largest ",
		" smallest ", " biggest ", " best ", " worst ", " most profitable ",
	}},
	{intent: model.IntentForecast, cues: []string{
		" forecast", " predict", " projection", " outlook", " next year",
		" next quarter", " will be ", " going to ", " expected to ",
	}},
	{intent: model.IntentRecommend, cues: []string{
		" should i ", " recommend", " buy or sell", " worth buying",
		" good investment", " good buy ", " invest in ",
	}},
	{intent: model.IntentRiskAnalysis, cues: []string{
		" risk", " risky", " downside", " exposure", " volatil",
	}},
	{intent: model.IntentValuation, cues: []string{
		" overvalued", " undervalued", " fair value", " fairly valued",
		" intrinsic value", " valuation", " too expensive", " cheap ",
	}},
	{intent: model.IntentExplainMetric, cues: []string{
		" what is ", " what does ", " what are ", " explain ", " define ",
		" mean ", " meaning ", " how is ",
	}, when: func(text string, tickers []model.TickerMatch, metrics []model.MetricMatch) bool {
		// Definitional only when no company is in play, not even a pronoun
		return len(tickers) == 0 && len(metrics) > 0 && !anaphorRe.MatchString(text)
	}},
	{intent: model.IntentTrend, cues: []string{
		" trend", " over time", " over the last ", " over the past ",
		" growth", " grew ", " grow ", " growing ", " year over year ",
		" year-over-year ", " yoy ", " history", " historical", " since ",
		" changed ", " evolution",
	}},
}

// anaphors that stand in for previously mentioned companies. Plural forms
// resolve to the whole prior set, singular forms to the most recent ticker.
var (
	anaphorRe      = regexp.MustCompile(`(?i)\b(they|them|their|theirs|it|its|that)\b`)
	pluralAnaphors = map[string]bool{"they": true, "them": true, "their": true, "theirs": true}
)

// Route resolves a question into a StructuredQuery. Resolution failures are
// data (warnings, missing slots), never errors: the pipeline always gets a
// best-effort query plus transparent uncertainty.
func (r *Router) Route(text string, prior *Context) model.StructuredQuery {
	resolver := resolve.NewResolver(r.universe.Current(), r.cfg)

	tickers, warnings := resolver.Resolve(text)
	tickers = resolveAnaphors(text, prior, tickers)
	metrics := r.engine.Infer(text)
	period := ParsePeriod(text)

	q := model.StructuredQuery{
		Tickers:  tickers,
		Metrics:  metrics,
		Period:   period,
		Warnings: warnings,
		RawText:  text,
	}

	intent, classified := classify(text, tickers, metrics)
	q.Intent = intent
	q.LowConfidence = !classified

	symbols := q.TickerSymbols()

	switch intent {
	case model.IntentCompare, model.IntentRank:
		if len(symbols) < 2 {
			q.Warnings = append(q.Warnings, fmt.Sprintf(
				"%s requires at least two companies, resolved %d", intent, len(symbols)))
			q.MissingSlots = append(q.MissingSlots, "comparison_target")
		} else if intent == model.IntentCompare {
			q.ComparisonTarget = symbols[1]
		}
	case model.IntentComputeKPI:
		// A derived KPI is meaningless without a period; downgrade instead
		// of guessing a year.
		if period == nil {
			q.Intent = model.IntentLookup
			q.MissingSlots = append(q.MissingSlots, "period")
		}
	}

	if q.Intent != model.IntentExplainMetric && len(symbols) == 0 {
		q.MissingSlots = append(q.MissingSlots, "ticker")
	}
	if (q.Intent == model.IntentLookup || q.Intent == model.IntentTrend) && len(metrics) == 0 {
		q.MissingSlots = append(q.MissingSlots, "metric")
	}

	return q
}

// classify returns the first matching intent rule. The second return value is
// false when no rule matched and the default lookup intent was assumed.
func classify(text string, tickers []model.TickerMatch, metrics []model.MetricMatch) (model.Intent, bool) {
	padded := " " + strings.ToLower(text) + " "

	for _, rule := range intentRules {
		if rule.when != nil && !rule.when(text, tickers, metrics) {
			continue
		}
		for _, cue := range rule.cues {
			if strings.Contains(padded, cue) {
				return rule.intent, true
			}
		}
	}

	// A plain "what was X's revenue" question is a confident lookup even
	// without an intent cue, as long as both slots resolved.
	if len(tickers) > 0 && len(metrics) > 0 {
		return model.IntentLookup, true
	}
	return model.IntentLookup, false
}

// resolveAnaphors substitutes previously mentioned tickers for pronouns. The
// substituted matches are marked as alias matches so downstream treats them
// like any other resolved mention.
func resolveAnaphors(text string, prior *Context, resolved []model.TickerMatch) []model.TickerMatch {
	if prior == nil || len(prior.LastTickers) == 0 {
		return resolved
	}

	loc := anaphorRe.FindStringIndex(text)
	if loc == nil {
		return resolved
	}
	word := strings.ToLower(text[loc[0]:loc[1]])

	substituted := prior.LastTickers
	if !pluralAnaphors[word] {
		substituted = prior.LastTickers[len(prior.LastTickers)-1:]
	}

	have := make(map[string]bool, len(resolved))
	for _, m := range resolved {
		have[m.Ticker] = true
	}

	out := resolved
	for _, t := range substituted {
		if have[t] {
			continue
		}
		out = append(out, model.TickerMatch{
			Ticker:        t,
			MatchedPhrase: text[loc[0]:loc[1]],
			Kind:          model.MatchAlias,
			Score:         anaphorScore,
			Start:         loc[0],
			End:           loc[1],
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Start < out[b].Start
	})
	return out
}
