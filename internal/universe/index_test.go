package universe

import (
	"os"
	"path/filepath"
	"testing"
)

func testCompanies() []Company {
	return []Company{
		{Ticker: "AAPL", Name: "Apple Inc."},
		{Ticker: "MSFT", Name: "Microsoft Corporation"},
		{Ticker: "GS", Name: "The Goldman Sachs Group, Inc."},
		{Ticker: "JPM", Name: "JPMorgan Chase & Co."},
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Apple Inc.", "apple"},
		{"Apple's", "apple"},
		{"Microsoft Corporation", "microsoft"},
		{"The Goldman Sachs Group, Inc.", "goldman sachs"},
		{"JPMorgan Chase & Co.", "jpmorgan chase"},
		{"Alphabet Holdings Inc.", "alphabet"},
		{"  Tesla,   Inc. ", "tesla"},
		{"Inc.", "inc"}, // suffix stripping never empties a name
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIndexLookups(t *testing.T) {
	idx := NewIndex(testCompanies(), nil)

	if _, ok := idx.LookupTicker("AAPL"); !ok {
		t.Error("AAPL should resolve as a bare ticker")
	}
	if _, ok := idx.LookupTicker("aapl"); !ok {
		t.Error("ticker lookup should be case-insensitive")
	}
	if _, ok := idx.LookupTicker("ZZZZ"); ok {
		t.Error("unknown symbol should not resolve")
	}

	if got := idx.LookupAlias("apple"); len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("alias apple = %v, want [AAPL]", got)
	}
	if got := idx.LookupAlias("goldman sachs"); len(got) != 1 || got[0] != "GS" {
		t.Errorf("alias goldman sachs = %v, want [GS]", got)
	}
	// First significant token stands alone when long enough
	if got := idx.LookupAlias("goldman"); len(got) != 1 || got[0] != "GS" {
		t.Errorf("alias goldman = %v, want [GS]", got)
	}
	if got := idx.LookupAlias("nothing here"); got != nil {
		t.Errorf("unknown alias = %v, want nil", got)
	}
}

func TestIndexCuratedAliases(t *testing.T) {
	idx := NewIndex(testCompanies(), []CuratedAlias{
		{Phrase: "Big Fruit Company", Ticker: "AAPL"},
	})

	if got := idx.LookupAlias("big fruit"); len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("curated alias = %v, want [AAPL]", got)
	}
}

func TestIndexCollisions(t *testing.T) {
	companies := []Company{
		{Ticker: "FOO", Name: "Acme Industrial Inc."},
		{Ticker: "BAR", Name: "Acme Software Corp."},
	}
	idx := NewIndex(companies, nil)

	// Both register the truncated base "acme"; the collision becomes an
	// explicit multi-ticker entry, never a silent winner.
	got := idx.LookupAlias("acme")
	if len(got) != 2 {
		t.Fatalf("alias acme = %v, want both tickers", got)
	}

	collisions := idx.Collisions()
	found := false
	for _, p := range collisions {
		if p == "acme" {
			found = true
		}
	}
	if !found {
		t.Errorf("collisions = %v, want to include acme", collisions)
	}
}

func TestRepositoryRebuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "universe.yaml")

	v1 := "companies:\n  - ticker: AAPL\n    name: Apple Inc.\n"
	if err := os.WriteFile(path, []byte(v1), 0o644); err != nil {
		t.Fatal(err)
	}

	repo, err := LoadRepository(path)
	if err != nil {
		t.Fatalf("LoadRepository: %v", err)
	}
	first := repo.Current()
	if first.Size() != 1 {
		t.Fatalf("size = %d, want 1", first.Size())
	}

	v2 := v1 + "  - ticker: MSFT\n    name: Microsoft Corporation\n"
	if err := os.WriteFile(path, []byte(v2), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	second := repo.Current()
	if second == first {
		t.Error("rebuild must swap in a new index generation")
	}
	if second.Size() != 2 {
		t.Errorf("size = %d, want 2", second.Size())
	}

	// A broken file leaves the previous generation live
	if err := os.WriteFile(path, []byte("companies: []"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.Rebuild(); err == nil {
		t.Fatal("expected rebuild error for empty universe")
	}
	if repo.Current() != second {
		t.Error("failed rebuild must not replace the live index")
	}
}
