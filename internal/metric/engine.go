package metric

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ppiankov/finvet/internal/model"
)

// hintWindow is how many tokens away a magnitude may sit from a metric
// phrase and still count as a value hint for it.
const hintWindow = 5

// Engine recognizes metric references in free text via an ordered rule
// table. Rules are data; the matching loop never changes when the catalog
// grows. The engine is immutable after construction.
type Engine struct {
	catalog *Catalog
	rules   []rule
}

// rule is one compiled pattern: normalized tokens plus its priority
type rule struct {
	metricID string
	tokens   []string
	priority int
}

// NewEngine compiles the catalog's patterns into an ordered rule table.
// Higher priority first, longer phrases first within a priority, so compound
// phrases are matched before the generic words they contain.
func NewEngine(catalog *Catalog) *Engine {
	var rules []rule
	for _, def := range catalog.Defs() {
		for _, p := range def.Patterns {
			toks := splitTokens(p.Phrase)
			if len(toks) == 0 {
				continue
			}
			rules = append(rules, rule{
				metricID: def.ID,
				tokens:   toks,
				priority: p.Priority,
			})
		}
	}

	sort.SliceStable(rules, func(a, b int) bool {
		if rules[a].priority != rules[b].priority {
			return rules[a].priority > rules[b].priority
		}
		return len(rules[a].tokens) > len(rules[b].tokens)
	})

	return &Engine{catalog: catalog, rules: rules}
}

// Catalog returns the engine's read-only catalog
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Infer returns every metric referenced in the text, tolerant of
// single-character typos in domain keywords. All matches come back; choosing
// which are relevant is the router's job. Standalone numbers are never
// metrics; a magnitude only becomes a value hint when it sits near a
// recognized metric phrase.
func (e *Engine) Infer(text string) []model.MetricMatch {
	words := splitTokens(text)
	if len(words) == 0 {
		return nil
	}

	consumed := make([]bool, len(words))
	type hit struct {
		match model.MetricMatch
		start int
		end   int
	}
	var hits []hit

	for _, r := range e.rules {
		for i := 0; i+len(r.tokens) <= len(words); i++ {
			if !matchAt(words, i, r.tokens) {
				continue
			}
			if anyConsumed(consumed, i, i+len(r.tokens)) {
				// A more specific pattern already owns this span
				continue
			}
			for j := i; j < i+len(r.tokens); j++ {
				consumed[j] = true
			}
			hits = append(hits, hit{
				match: model.MetricMatch{
					MetricID:    r.metricID,
					SurfaceForm: strings.Join(words[i:i+len(r.tokens)], " "),
					Priority:    r.priority,
				},
				start: i,
				end:   i + len(r.tokens),
			})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].start < hits[b].start
	})

	// Attach value hints and deduplicate by metric, keeping the highest
	// priority occurrence.
	seen := make(map[string]int)
	var out []model.MetricMatch
	for _, h := range hits {
		if v, ok := nearbyMagnitude(words, h.start, h.end); ok {
			h.match.ValueHint = &v
		}
		if pos, dup := seen[h.match.MetricID]; dup {
			if h.match.Priority > out[pos].Priority {
				out[pos] = h.match
			}
			continue
		}
		seen[h.match.MetricID] = len(out)
		out = append(out, h.match)
	}

	return out
}

// matchAt reports whether the pattern tokens match the input starting at i.
// Tokens of four or more characters tolerate one edit; short tokens must
// match exactly.
func matchAt(words []string, i int, pattern []string) bool {
	for j, pt := range pattern {
		w := words[i+j]
		if w == pt {
			continue
		}
		if len(pt) >= 4 && withinOneEdit(w, pt) {
			continue
		}
		return false
	}
	return true
}

func anyConsumed(consumed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion, substitution, or adjacent transposition.
func withinOneEdit(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b, la, lb = b, a, lb, la
	}
	if lb-la > 1 {
		return false
	}

	for i := 0; i < la; i++ {
		if a[i] == b[i] {
			continue
		}
		if la == lb {
			if a[i+1:] == b[i+1:] { // substitution
				return true
			}
			// adjacent transposition
			return i+1 < la && a[i] == b[i+1] && a[i+1] == b[i] && a[i+2:] == b[i+2:]
		}
		return a[i:] == b[i+1:] // deletion from b
	}
	return true // equal, or b has one extra trailing char
}

// nearbyMagnitude looks for a currency/scale magnitude within hintWindow
// tokens of a matched span.
func nearbyMagnitude(words []string, start, end int) (float64, bool) {
	lo := start - hintWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + hintWindow
	if hi > len(words) {
		hi = len(words)
	}

	for i := lo; i < hi; i++ {
		if i >= start && i < end {
			continue
		}
		if v, ok := parseMagnitude(words, i); ok {
			return v, true
		}
	}
	return 0, false
}

// parseMagnitude parses tokens like "394.3b", "500" followed by "billion",
// or "18.5" followed by "percent". Plain numbers without a scale are ignored
// so years and counts never become hints.
func parseMagnitude(words []string, i int) (float64, bool) {
	w := words[i]

	scale := 1.0
	hasScale := false
	switch {
	case strings.HasSuffix(w, "k"):
		scale, hasScale = 1e3, true
		w = strings.TrimSuffix(w, "k")
	case strings.HasSuffix(w, "m"):
		scale, hasScale = 1e6, true
		w = strings.TrimSuffix(w, "m")
	case strings.HasSuffix(w, "bn"):
		scale, hasScale = 1e9, true
		w = strings.TrimSuffix(w, "bn")
	case strings.HasSuffix(w, "b"):
		scale, hasScale = 1e9, true
		w = strings.TrimSuffix(w, "b")
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(w, ",", ""), 64)
	if err != nil {
		return 0, false
	}

	if !hasScale && i+1 < len(words) {
		switch words[i+1] {
		case "thousand":
			scale, hasScale = 1e3, true
		case "million":
			scale, hasScale = 1e6, true
		case "billion":
			scale, hasScale = 1e9, true
		case "trillion":
			scale, hasScale = 1e12, true
		case "percent":
			hasScale = true
		}
	}

	if !hasScale {
		return 0, false
	}
	return v * scale, true
}

// splitTokens lower-cases and splits on anything that is not a letter,
// digit, comma, or decimal point. Commas and points survive so magnitudes
// like "394.3" and "1,250" stay single tokens; bare trailing punctuation is
// trimmed afterwards.
func splitTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != ','
	})

	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
