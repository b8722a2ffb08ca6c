package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/finvet/internal/correct"
	"github.com/ppiankov/finvet/internal/extract"
	"github.com/ppiankov/finvet/internal/facts"
	"github.com/ppiankov/finvet/internal/llm"
	"github.com/ppiankov/finvet/internal/metric"
	"github.com/ppiankov/finvet/internal/model"
	"github.com/ppiankov/finvet/internal/resolve"
	"github.com/ppiankov/finvet/internal/route"
	"github.com/ppiankov/finvet/internal/score"
	"github.com/ppiankov/finvet/internal/universe"
	"github.com/ppiankov/finvet/internal/verify"
)

// stubProvider returns a canned answer so tests can exercise the
// verification and correction stages with known-bad prose.
type stubProvider struct {
	text string
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) IsAvailable(_ context.Context) bool { return true }

func (p *stubProvider) Generate(_ context.Context, _ llm.AnswerRequest) (*llm.AnswerResponse, error) {
	return &llm.AnswerResponse{Text: p.text, Model: "stub"}, nil
}

func testRows() []facts.Row {
	return []facts.Row{
		{Ticker: "AAPL", Metric: "revenue", Period: "2022-FY", Value: 394.328e9, Source: "FY2022 10-K"},
		{Ticker: "AAPL", Metric: "revenue", Period: "2023-FY", Value: 383.285e9, Source: "FY2023 10-K"},
		{Ticker: "AAPL", Metric: "gross_margin", Period: "2022-FY", Value: 43.3, Source: "FY2022 10-K"},
		{Ticker: "MSFT", Metric: "revenue", Period: "2022-FY", Value: 198.27e9, Source: "MSFT FY2022 10-K"},
	}
}

func testPipeline(t *testing.T, provider llm.Provider, vcfg model.VerificationConfig) *Pipeline {
	t.Helper()

	repo := universe.NewRepository(universe.NewIndex([]universe.Company{
		{Ticker: "AAPL", Name: "Apple Inc."},
		{Ticker: "MSFT", Name: "Microsoft Corporation"},
	}, nil))

	store, err := facts.NewStaticStore(testRows())
	if err != nil {
		t.Fatal(err)
	}

	catalog := metric.DefaultCatalog()
	engine := metric.NewEngine(catalog)
	cfg := model.DefaultConfig()
	cfg.Verification = vcfg

	return &Pipeline{
		router:    route.NewRouter(repo, engine, cfg.Resolver),
		universe:  repo,
		catalog:   catalog,
		store:     store,
		extractor: extract.NewFactExtractor(resolve.NewResolver(repo.Current(), cfg.Resolver), engine),
		verifier:  verify.NewVerifier(store, catalog, vcfg),
		scorer:    score.NewScorer(),
		corrector: correct.NewCorrector(vcfg),
		renderer:  NewRenderer(true),
		provider:  provider,
		config:    cfg,
	}
}

func TestAnswerTemplateEndToEnd(t *testing.T) {
	p := testPipeline(t, llm.NewTemplateProvider(), model.DefaultConfig().Verification)

	report, err := p.Answer(context.Background(), "What was Apple's revenue in fiscal 2022?", nil)
	if err != nil {
		t.Fatal(err)
	}

	if report.ID == "" {
		t.Error("report should carry an ID")
	}
	if report.Query.Intent != model.IntentLookup {
		t.Errorf("intent = %s, want lookup", report.Query.Intent)
	}
	if !strings.Contains(report.Answer, "$394.3 billion") {
		t.Errorf("answer %q should state the revenue", report.Answer)
	}
	if len(report.Facts) != 1 {
		t.Fatalf("extracted %d facts, want 1", len(report.Facts))
	}
	if !report.Results[0].Verifiable || !report.Results[0].IsCorrect {
		t.Errorf("template-rendered value should verify correct: %+v", report.Results[0])
	}
	if report.CorrectedAnswer != "" {
		t.Errorf("correct answer should not be rewritten, got %q", report.CorrectedAnswer)
	}
	if report.Confidence.Score < 0.85 {
		t.Errorf("confidence = %.2f, want >= 0.85", report.Confidence.Score)
	}
	if report.Rejected {
		t.Error("confident answer must not be rejected")
	}
}

func TestAnswerCorrectsWrongValue(t *testing.T) {
	stub := &stubProvider{text: "Apple's revenue was $500 billion in fiscal 2022."}
	p := testPipeline(t, stub, model.DefaultConfig().Verification)

	report, err := p.Answer(context.Background(), "What was Apple's revenue in fiscal 2022?", nil)
	if err != nil {
		t.Fatal(err)
	}

	if report.IncorrectCount() != 1 {
		t.Fatalf("incorrect count = %d, want 1", report.IncorrectCount())
	}
	if !strings.Contains(report.CorrectedAnswer, "$394.33 billion") {
		t.Errorf("corrected answer %q should carry the actual value", report.CorrectedAnswer)
	}
	if report.FinalAnswer() != report.CorrectedAnswer {
		t.Error("final answer should be the corrected text")
	}
	if report.Answer == report.CorrectedAnswer {
		t.Error("original prose must be preserved unmodified")
	}
}

func TestAnswerStrictModeRejects(t *testing.T) {
	stub := &stubProvider{text: "Apple's revenue was $500 billion in fiscal 2022."}
	vcfg := model.DefaultConfig().Verification
	vcfg.StrictMode = true
	vcfg.MinConfidence = 0.5
	p := testPipeline(t, stub, vcfg)

	report, err := p.Answer(context.Background(), "What was Apple's revenue in fiscal 2022?", nil)
	if err != nil {
		t.Fatal(err)
	}

	if !report.Rejected {
		t.Fatalf("low-confidence answer should be rejected, confidence %.2f", report.Confidence.Score)
	}
	if report.CorrectedAnswer != "" {
		t.Error("rejected answers are not corrected")
	}
	if report.FinalAnswer() != "" {
		t.Error("rejected report must not expose an answer")
	}
}

func TestAnswerNoGroundTruth(t *testing.T) {
	p := testPipeline(t, llm.NewTemplateProvider(), model.DefaultConfig().Verification)

	report, err := p.Answer(context.Background(), "What was Microsoft's gross margin in 2022?", nil)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(report.Answer, "No financial data") {
		t.Errorf("answer %q should admit the data gap", report.Answer)
	}
	if report.Confidence.TotalFacts != 0 {
		t.Errorf("total facts = %d, want 0", report.Confidence.TotalFacts)
	}
	if math.Abs(report.Confidence.Score-0.3) > 1e-9 {
		t.Errorf("confidence = %.2f, want the 0.3 uncertainty floor", report.Confidence.Score)
	}
}

func TestAnswerConversationContext(t *testing.T) {
	p := testPipeline(t, llm.NewTemplateProvider(), model.DefaultConfig().Verification)
	conv := &route.Context{}

	first, err := p.Answer(context.Background(), "What was Apple's revenue in fiscal 2022?", conv)
	if err != nil {
		t.Fatal(err)
	}
	conv.Remember(first.Query.TickerSymbols())

	second, err := p.Answer(context.Background(), "What was their gross margin in 2022?", conv)
	if err != nil {
		t.Fatal(err)
	}

	if got := second.Query.TickerSymbols(); len(got) != 1 || got[0] != "AAPL" {
		t.Fatalf("follow-up should resolve to AAPL, got %v", got)
	}
	if !strings.Contains(second.Answer, "43.3%") {
		t.Errorf("follow-up answer %q should state the margin", second.Answer)
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	universePath := filepath.Join(dir, "universe.yaml")
	if err := os.WriteFile(universePath, []byte(`companies:
  - ticker: AAPL
    name: Apple Inc.
`), 0644); err != nil {
		t.Fatal(err)
	}

	factsPath := filepath.Join(dir, "facts.yaml")
	if err := os.WriteFile(factsPath, []byte(`facts:
  - ticker: AAPL
    metric: revenue
    period: 2022-FY
    value: 394328000000
    source: FY2022 10-K
`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	cfg.Universe.Path = universePath
	cfg.Facts.Path = factsPath
	cfg.Cache.Enabled = false

	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	report, err := p.Answer(context.Background(), "What was Apple's revenue in fiscal 2022?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(report.Answer, "$394.3 billion") {
		t.Errorf("answer %q should state the revenue", report.Answer)
	}
}

func TestNewRequiresDataFiles(t *testing.T) {
	cfg := model.DefaultConfig()
	if _, err := New(cfg); err == nil {
		t.Error("pipeline without data files should fail to build")
	}
}

func TestRenderReport(t *testing.T) {
	p := testPipeline(t, llm.NewTemplateProvider(), model.DefaultConfig().Verification)

	report, err := p.Answer(context.Background(), "What was Apple's revenue in fiscal 2022?", nil)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")

	if err := p.RenderReport(report, jsonPath, mdPath, false); err != nil {
		t.Fatal(err)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{report.Question, "## Answer", "## Verification", "$394.3 billion"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown report missing %q", want)
		}
	}

	if _, err := os.Stat(jsonPath); err != nil {
		t.Errorf("JSON report not written: %v", err)
	}
}
