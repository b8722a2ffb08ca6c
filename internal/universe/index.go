package universe

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// legalSuffixes are corporate-form tokens stripped from the end of company
// names during normalization. Stripping repeats because some names end in
// compound suffixes ("Holdings Inc.").
var legalSuffixes = map[string]bool{
	"inc": true, "incorporated": true,
	"corp": true, "corporation": true,
	"co": true, "company": true,
	"ltd": true, "limited": true,
	"plc": true, "llc": true, "lp": true,
	"holdings": true, "holding": true,
	"group": true,
	"sa":    true, "ag": true, "nv": true, "se": true,
}

// genericBases are leading tokens too common to stand alone as an alias
var genericBases = map[string]bool{
	"the": true, "first": true, "american": true, "national": true,
	"general": true, "united": true, "international": true, "global": true,
	"new": true,
}

// Index is the read-only alias index. Built once, never mutated; rebuilds
// produce a new Index swapped in atomically by the Repository.
type Index struct {
	builtAt   time.Time
	tickers   map[string]string   // upper-cased symbol -> ticker
	names     map[string]string   // ticker -> registered company name
	aliases   map[string][]string // normalized phrase -> tickers
	phrases   []string            // sorted alias phrases, for fuzzy scans
	collision []string            // phrases that ended up shared by several tickers
}

// NewIndex builds an alias index from the universe rows plus curated aliases.
// Colliding truncated base forms become explicit multi-ticker entries rather
// than silently dropping one side.
func NewIndex(companies []Company, curated []CuratedAlias) *Index {
	idx := &Index{
		builtAt: time.Now().UTC(),
		tickers: make(map[string]string, len(companies)),
		names:   make(map[string]string, len(companies)),
		aliases: make(map[string][]string),
	}

	for _, c := range companies {
		ticker := strings.ToUpper(strings.TrimSpace(c.Ticker))
		idx.tickers[ticker] = ticker
		idx.names[ticker] = c.Name

		full := Normalize(c.Name)
		if full != "" {
			idx.addAlias(full, ticker)
		}

		// Truncated base form: the first significant token, then the first
		// two. Single generic words never stand alone.
		tokens := strings.Fields(full)
		if len(tokens) > 1 {
			idx.addAlias(strings.Join(tokens[:2], " "), ticker)
		}
		if len(tokens) >= 1 {
			base := tokens[0]
			if len(base) >= 4 && !genericBases[base] {
				idx.addAlias(base, ticker)
			}
		}
	}

	for _, a := range curated {
		idx.addAlias(Normalize(a.Phrase), strings.ToUpper(a.Ticker))
	}

	idx.phrases = make([]string, 0, len(idx.aliases))
	for p := range idx.aliases {
		idx.phrases = append(idx.phrases, p)
	}
	sort.Strings(idx.phrases)

	return idx
}

func (idx *Index) addAlias(phrase, ticker string) {
	if phrase == "" {
		return
	}
	existing := idx.aliases[phrase]
	for _, t := range existing {
		if t == ticker {
			return
		}
	}
	if len(existing) == 1 {
		idx.collision = append(idx.collision, phrase)
	}
	idx.aliases[phrase] = append(existing, ticker)
}

// LookupTicker resolves a bare symbol (case-insensitive exact match)
func (idx *Index) LookupTicker(symbol string) (string, bool) {
	t, ok := idx.tickers[strings.ToUpper(symbol)]
	return t, ok
}

// LookupAlias returns the tickers registered for a normalized phrase.
// More than one ticker means the phrase is an explicit disambiguation entry.
func (idx *Index) LookupAlias(phrase string) []string {
	return idx.aliases[phrase]
}

// Phrases returns all registered alias phrases in sorted order
func (idx *Index) Phrases() []string {
	return idx.phrases
}

// Name returns the registered company name for a ticker
func (idx *Index) Name(ticker string) string {
	return idx.names[strings.ToUpper(ticker)]
}

// Collisions lists phrases shared by several tickers
func (idx *Index) Collisions() []string {
	return idx.collision
}

// Size returns the number of companies in the index
func (idx *Index) Size() int {
	return len(idx.tickers)
}

// BuiltAt reports when this index generation was constructed
func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}

// Normalize lower-cases a phrase, collapses whitespace and punctuation, drops
// a trailing possessive, and strips legal-entity suffixes repeatedly. The
// resolver applies the identical normalization to candidate windows so both
// sides of a lookup agree.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	// "apple s" after punctuation removal of "apple's"
	if n := len(tokens); n > 1 && tokens[n-1] == "s" {
		tokens = tokens[:n-1]
	}
	tokens = stripLegalSuffixes(tokens)
	if len(tokens) > 1 && tokens[0] == "the" {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// stripLegalSuffixes drops trailing corporate-form tokens, repeating while
// one remains, but never empties the name.
func stripLegalSuffixes(tokens []string) []string {
	for len(tokens) > 1 && legalSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}
