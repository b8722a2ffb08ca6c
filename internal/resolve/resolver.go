package resolve

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ppiankov/finvet/internal/model"
	"github.com/ppiankov/finvet/internal/universe"
)

const (
	defaultMaxWindow      = 4
	defaultFuzzyThreshold = 0.8

	// Fuzzy matching is unreliable on very short strings
	minFuzzyLen = 4

	// Bounded length difference keeps the fuzzy scan cheap
	maxFuzzyLenDiff = 2

	aliasScore = 0.95
)

// stopwords are tokens never considered company mentions on their own
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "by": true, "did": true,
	"do": true, "does": true, "for": true, "how": true, "i": true, "in": true,
	"is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"s": true, "should": true, "that": true, "the": true, "this": true,
	"to": true, "vs": true, "was": true, "what": true, "which": true,
	"with": true, "year": true,
}

// Resolver resolves ticker/company mentions in free text against the alias
// index. It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	idx            *universe.Index
	maxWindow      int
	fuzzyThreshold float64
}

// NewResolver creates a resolver over an index generation
func NewResolver(idx *universe.Index, cfg model.ResolverConfig) *Resolver {
	maxWindow := cfg.MaxWindowTokens
	if maxWindow <= 0 {
		maxWindow = defaultMaxWindow
	}
	threshold := cfg.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultFuzzyThreshold
	}

	return &Resolver{
		idx:            idx,
		maxWindow:      maxWindow,
		fuzzyThreshold: threshold,
	}
}

// token is a word with its byte span in the original text
type token struct {
	text  string
	start int
	end   int
}

// candidate is a possible mention before overlap pruning. Several tickers in
// one candidate means the mention is genuinely ambiguous.
type candidate struct {
	tickers []string
	phrase  string
	kind    model.MatchKind
	score   float64
	start   int
	end     int
}

// Resolve finds company mentions in the input text. No match is not an
// error: the caller decides whether an empty list is an unresolved-entity
// condition. Ambiguous mentions produce all tied tickers plus a warning.
func (r *Resolver) Resolve(text string) ([]model.TickerMatch, []string) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	var candidates []candidate

	for i := range tokens {
		matched := false

		// Longest windows first so a full name beats its own prefix
		for w := r.maxWindow; w >= 1; w-- {
			if i+w > len(tokens) {
				continue
			}
			first, last := tokens[i], tokens[i+w-1]
			raw := text[first.start:last.end]

			if w == 1 {
				if c, ok := r.matchBareTicker(first); ok {
					candidates = append(candidates, c)
					matched = true
					continue
				}
			}

			norm := universe.Normalize(raw)
			if norm == "" {
				continue
			}

			if tickers := r.idx.LookupAlias(norm); len(tickers) > 0 {
				candidates = append(candidates, candidate{
					tickers: tickers,
					phrase:  raw,
					kind:    model.MatchAlias,
					score:   aliasScore,
					start:   first.start,
					end:     last.end,
				})
				matched = true
			}
		}

		// Fuzzy only when nothing matched starting at this token; a typo'd
		// mention has no exact or alias hit to fall back on.
		if !matched {
			if c, ok := r.matchFuzzy(text, tokens, i); ok {
				candidates = append(candidates, c)
			}
		}
	}

	selected := pruneOverlaps(candidates)

	var matches []model.TickerMatch
	var warnings []string

	for _, c := range selected {
		if len(c.tickers) > 1 {
			warnings = append(warnings, fmt.Sprintf(
				"ambiguous mention %q matches multiple tickers: %s",
				c.phrase, strings.Join(c.tickers, ", ")))
		}
		for _, t := range c.tickers {
			matches = append(matches, model.TickerMatch{
				Ticker:        t,
				MatchedPhrase: c.phrase,
				Kind:          c.kind,
				Score:         c.score,
				Start:         c.start,
				End:           c.end,
			})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Start < matches[b].Start
	})

	return matches, warnings
}

// matchBareTicker checks whether a single token is a known ticker symbol.
// Lower-case tokens only count when they are long enough not to collide with
// ordinary words ("it", "a").
func (r *Resolver) matchBareTicker(tok token) (candidate, bool) {
	word := strings.Trim(tok.text, ".'")
	if word == "" {
		return candidate{}, false
	}

	// An explicit upper-case symbol always counts, even when its lower-case
	// form is an ordinary word ("IT", "ALL").
	allUpper := word == strings.ToUpper(word) && strings.IndexFunc(word, unicode.IsLetter) >= 0
	if !allUpper && (len(word) < 3 || stopwords[strings.ToLower(word)]) {
		return candidate{}, false
	}

	ticker, ok := r.idx.LookupTicker(word)
	if !ok {
		return candidate{}, false
	}

	return candidate{
		tickers: []string{ticker},
		phrase:  word,
		kind:    model.MatchExact,
		score:   1.0,
		start:   tok.start,
		end:     tok.end,
	}, true
}

// matchFuzzy compares normalized windows starting at token i against the
// alias set with bounded edit distance. Equal-best distinct tickers all
// survive: ambiguity must be visible to the caller.
func (r *Resolver) matchFuzzy(text string, tokens []token, i int) (candidate, bool) {
	maxW := r.maxWindow
	if maxW > len(tokens)-i {
		maxW = len(tokens) - i
	}

	best := candidate{}
	for w := maxW; w >= 1; w-- {
		first, last := tokens[i], tokens[i+w-1]
		raw := text[first.start:last.end]
		norm := universe.Normalize(raw)
		if len(norm) < minFuzzyLen || (w == 1 && stopwords[norm]) {
			continue
		}

		bestSim := r.fuzzyThreshold
		var tied []string
		for _, phrase := range r.idx.Phrases() {
			diff := len(phrase) - len(norm)
			if diff < -maxFuzzyLenDiff || diff > maxFuzzyLenDiff {
				continue
			}
			sim := similarity(norm, phrase)
			if sim < bestSim {
				continue
			}
			if sim > bestSim {
				bestSim = sim
				tied = tied[:0]
			}
			tied = append(tied, r.idx.LookupAlias(phrase)...)
		}

		if len(tied) == 0 || bestSim >= 1 {
			// Similarity 1 would have been an alias hit already
			continue
		}

		if bestSim > best.score {
			best = candidate{
				tickers: dedupe(tied),
				phrase:  raw,
				kind:    model.MatchFuzzy,
				score:   bestSim,
				start:   first.start,
				end:     last.end,
			}
		}
	}

	return best, len(best.tickers) > 0
}

// pruneOverlaps selects non-overlapping candidates, preferring longer spans,
// then match-kind precedence, then score, then earlier position.
func pruneOverlaps(candidates []candidate) []candidate {
	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		la, lb := ca.end-ca.start, cb.end-cb.start
		if la != lb {
			return la > lb
		}
		if ca.kind.Precedence() != cb.kind.Precedence() {
			return ca.kind.Precedence() < cb.kind.Precedence()
		}
		if ca.score != cb.score {
			return ca.score > cb.score
		}
		return ca.start < cb.start
	})

	var selected []candidate
	for _, c := range candidates {
		overlaps := false
		for _, s := range selected {
			if c.start < s.end && s.start < c.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			selected = append(selected, c)
		}
	}

	sort.SliceStable(selected, func(a, b int) bool {
		return selected[a].start < selected[b].start
	})

	return selected
}

// tokenize splits text into word tokens with byte offsets
func tokenize(text string) []token {
	var tokens []token
	start := -1

	isWord := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' || r == '\'' || r == '-' || r == '.'
	}

	for i, r := range text {
		if isWord(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, token{text: text[start:i], start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: text[start:], start: start, end: len(text)})
	}

	// Trim trailing sentence punctuation that rode along inside tokens
	for i := range tokens {
		trimmed := strings.TrimRight(tokens[i].text, ".")
		if trimmed != "" && len(trimmed) != len(tokens[i].text) {
			tokens[i].end -= len(tokens[i].text) - len(trimmed)
			tokens[i].text = trimmed
		}
	}

	return tokens
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
