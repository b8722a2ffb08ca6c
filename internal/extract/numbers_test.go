package extract

import (
	"strings"
	"testing"

	"github.com/ppiankov/finvet/internal/metric"
	"github.com/ppiankov/finvet/internal/model"
	"github.com/ppiankov/finvet/internal/resolve"
	"github.com/ppiankov/finvet/internal/universe"
)

func testExtractor() *FactExtractor {
	idx := universe.NewIndex([]universe.Company{
		{Ticker: "AAPL", Name: "Apple Inc."},
		{Ticker: "MSFT", Name: "Microsoft Corporation"},
	}, nil)
	resolver := resolve.NewResolver(idx, model.ResolverConfig{})
	engine := metric.NewEngine(metric.DefaultCatalog())
	return NewFactExtractor(resolver, engine)
}

func TestExtractCurrencyWithSuffix(t *testing.T) {
	e := testExtractor()
	text := "Apple's revenue is $394.3B for the fiscal year."

	facts := e.Extract(text)
	if len(facts) != 1 {
		t.Fatalf("facts = %v, want one", facts)
	}
	f := facts[0]
	if f.Value != 394.3 || f.Unit != model.UnitBillion {
		t.Errorf("value/unit = %g %s, want 394.3 billion", f.Value, f.Unit)
	}
	if f.Literal != "$394.3B" {
		t.Errorf("literal = %q, want $394.3B", f.Literal)
	}
	if f.Metric != "revenue" {
		t.Errorf("metric = %q, want revenue", f.Metric)
	}
	if f.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", f.Ticker)
	}
	if text[f.Position:f.Position+len(f.Literal)] != f.Literal {
		t.Error("position does not point at the literal")
	}
}

func TestExtractPercentWithPeriod(t *testing.T) {
	e := testExtractor()

	facts := e.Extract("Apple's gross margin was 44.1% in FY2023.")
	if len(facts) != 1 {
		t.Fatalf("facts = %v, want one", facts)
	}
	f := facts[0]
	if f.Value != 44.1 || f.Unit != model.UnitPercent {
		t.Errorf("value/unit = %g %s, want 44.1 percent", f.Value, f.Unit)
	}
	if f.Metric != "gross_margin" {
		t.Errorf("metric = %q, want gross_margin", f.Metric)
	}
	if f.Period != "2023-FY" {
		t.Errorf("period = %q, want 2023-FY", f.Period)
	}
}

func TestExtractSkipsBareNumbers(t *testing.T) {
	e := testExtractor()

	facts := e.Extract("In 2023, Apple employed about 161,000 people worldwide.")
	if len(facts) != 0 {
		t.Errorf("facts = %v, want none for bare numbers", facts)
	}
}

func TestExtractWordMagnitudes(t *testing.T) {
	e := testExtractor()

	facts := e.Extract("Apple reported net income of 96.9 billion dollars.")
	if len(facts) != 1 {
		t.Fatalf("facts = %v, want one", facts)
	}
	f := facts[0]
	if f.Value != 96.9 || f.Unit != model.UnitBillion {
		t.Errorf("value/unit = %g %s, want 96.9 billion", f.Value, f.Unit)
	}
	if f.Metric != "net_income" {
		t.Errorf("metric = %q, want net_income", f.Metric)
	}
}

func TestExtractRatioSuffix(t *testing.T) {
	e := testExtractor()

	facts := e.Extract("Apple trades at a P/E ratio of 28.5x today.")
	if len(facts) != 1 {
		t.Fatalf("facts = %v, want one", facts)
	}
	f := facts[0]
	if f.Value != 28.5 || f.Unit != model.UnitRatio {
		t.Errorf("value/unit = %g %s, want 28.5 ratio", f.Value, f.Unit)
	}
	if f.Metric != "pe_ratio" {
		t.Errorf("metric = %q, want pe_ratio", f.Metric)
	}
}

func TestExtractMultiCompanyAssociation(t *testing.T) {
	e := testExtractor()
	text := "Apple's revenue was $383.3 billion, while Microsoft's revenue was $245.1 billion."

	facts := e.Extract(text)
	if len(facts) != 2 {
		t.Fatalf("facts = %v, want two", facts)
	}
	if facts[0].Ticker != "AAPL" {
		t.Errorf("first fact ticker = %q, want AAPL", facts[0].Ticker)
	}
	if facts[1].Ticker != "MSFT" {
		t.Errorf("second fact ticker = %q, want MSFT", facts[1].Ticker)
	}
}

func TestExtractUnassignedWhenNoProximalMention(t *testing.T) {
	e := testExtractor()

	filler := strings.Repeat("the results were broadly in line with guidance and consensus estimates, ", 4)
	text := "Apple and Microsoft both reported earnings. " + filler + "Margins were 20% overall."

	facts := e.Extract(text)
	if len(facts) != 1 {
		t.Fatalf("facts = %v, want one", facts)
	}
	if facts[0].Ticker != "" {
		t.Errorf("ticker = %q, want unassigned", facts[0].Ticker)
	}
}

func TestExtractSingleSubjectInheritance(t *testing.T) {
	e := testExtractor()
	text := "Apple had a strong year. Revenue reached $383.3 billion and EPS came in at $6.13."

	facts := e.Extract(text)
	if len(facts) != 2 {
		t.Fatalf("facts = %v, want two", facts)
	}
	for _, f := range facts {
		if f.Ticker != "AAPL" {
			t.Errorf("fact %q ticker = %q, want AAPL inherited", f.Literal, f.Ticker)
		}
	}
	if facts[1].Value != 6.13 || facts[1].Unit != model.UnitRaw {
		t.Errorf("eps fact = %g %s, want 6.13 raw", facts[1].Value, facts[1].Unit)
	}
}

func TestStripHTML(t *testing.T) {
	in := `<html><body><p>Revenue was <b>$10B</b>.</p><script>var x = 99;</script></body></html>`
	got := StripHTML(in)

	if strings.Contains(got, "<") || strings.Contains(got, "99") {
		t.Errorf("StripHTML = %q, markup or script leaked", got)
	}
	if !strings.Contains(got, "$10B") {
		t.Errorf("StripHTML = %q, lost visible text", got)
	}

	plain := "Revenue was $10B."
	if StripHTML(plain) != plain {
		t.Error("plain text must pass through unchanged")
	}
}
