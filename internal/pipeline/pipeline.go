package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/finvet/internal/cache"
	"github.com/ppiankov/finvet/internal/correct"
	"github.com/ppiankov/finvet/internal/extract"
	"github.com/ppiankov/finvet/internal/facts"
	"github.com/ppiankov/finvet/internal/llm"
	"github.com/ppiankov/finvet/internal/logging"
	"github.com/ppiankov/finvet/internal/metric"
	"github.com/ppiankov/finvet/internal/model"
	"github.com/ppiankov/finvet/internal/resolve"
	"github.com/ppiankov/finvet/internal/route"
	"github.com/ppiankov/finvet/internal/score"
	"github.com/ppiankov/finvet/internal/universe"
	"github.com/ppiankov/finvet/internal/verify"
)

// Pipeline orchestrates the complete answer process: understand the question,
// gather ground truth, generate prose, then verify and correct it.
type Pipeline struct {
	router    *route.Router
	universe  *universe.Repository
	catalog   *metric.Catalog
	store     facts.Store
	extractor *extract.FactExtractor
	verifier  *verify.Verifier
	scorer    *score.Scorer
	corrector *correct.Corrector
	renderer  *Renderer
	provider  llm.Provider
	config    *model.Config
}

// New builds a pipeline from configuration. The universe and facts files are
// required; the metric catalog falls back to the built-in one.
func New(cfg *model.Config) (*Pipeline, error) {
	if cfg.Universe.Path == "" {
		return nil, fmt.Errorf("universe file is required (set universe.path)")
	}
	if cfg.Facts.Path == "" {
		return nil, fmt.Errorf("facts file is required (set facts.path)")
	}

	repo, err := universe.LoadRepository(cfg.Universe.Path)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	catalog := metric.DefaultCatalog()
	if cfg.Catalog.Path != "" {
		catalog, err = metric.LoadCatalog(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	static, err := facts.LoadStore(cfg.Facts.Path)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}

	var store facts.Store = static
	if cfg.Cache.Enabled {
		var c cache.Cache
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.MemoryTTL)
		}
		store = facts.NewCachedStore(static, c, cfg.Cache.MemoryTTL)
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init answer provider: %w", err)
	}

	engine := metric.NewEngine(catalog)
	resolver := resolve.NewResolver(repo.Current(), cfg.Resolver)

	logging.Info("pipeline ready",
		zap.Int("companies", repo.Current().Size()),
		zap.Int("metrics", len(catalog.Defs())),
		zap.Int("fact_series", static.Size()),
		zap.String("provider", provider.Name()))

	return &Pipeline{
		router:    route.NewRouter(repo, engine, cfg.Resolver),
		universe:  repo,
		catalog:   catalog,
		store:     store,
		extractor: extract.NewFactExtractor(resolver, engine),
		verifier:  verify.NewVerifier(store, catalog, cfg.Verification),
		scorer:    score.NewScorer(),
		corrector: correct.NewCorrector(cfg.Verification),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		provider:  provider,
		config:    cfg,
	}, nil
}

// Answer runs one question through the full pipeline. The prior conversation
// context is caller-owned and may be nil for a standalone question.
func (p *Pipeline) Answer(ctx context.Context, question string, prior *route.Context) (*model.Report, error) {
	start := time.Now()

	// 1. Understand the question
	query := p.router.Route(question, prior)
	logging.Debug("routed question",
		zap.String("intent", string(query.Intent)),
		zap.Strings("tickers", query.TickerSymbols()),
		zap.Strings("metrics", query.MetricIDs()),
		zap.Strings("missing", query.MissingSlots))

	// 2. Gather ground truth for the resolved companies and metrics
	gathered := p.gatherFacts(&query)

	// 3. Generate prose
	resp, err := p.provider.Generate(ctx, llm.AnswerRequest{
		Question: question,
		Query:    query,
		Facts:    gathered,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer := extract.StripHTML(resp.Text)

	// 4. Extract the numeric claims the prose actually makes
	extracted := p.extractor.Extract(answer)

	// 5. Verify each claim against the store
	results := p.verifier.VerifyAll(extracted)

	// 6. Score
	confidence := p.scorer.Calculate(results, distinctSources(gathered))

	report := &model.Report{
		ID:         uuid.NewString(),
		Question:   question,
		AnsweredAt: time.Now().UTC(),
		Query:      query,
		Answer:     answer,
		Facts:      extracted,
		Results:    results,
		Confidence: confidence,
		Generator:  generatorLabel(p.provider.Name(), resp.Model),
	}

	// 7. Correct or withhold
	if p.config.Verification.StrictMode && confidence.Score < p.config.Verification.MinConfidence {
		report.Rejected = true
		logging.Warn("answer rejected",
			zap.Float64("confidence", confidence.Score),
			zap.Float64("min_confidence", p.config.Verification.MinConfidence))
	} else if corrected, edits := p.corrector.Apply(answer, results); edits > 0 {
		report.CorrectedAnswer = corrected
		logging.Info("answer corrected", zap.Int("edits", edits))
	}

	report.LatencyMS = int(time.Since(start).Milliseconds())
	return report, nil
}

// RenderReport renders the report to the configured outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}

// gatherFacts pulls ground-truth values for every resolved (company, metric)
// pair. Misses are silent here; the question may still be answerable from the
// pairs that do resolve, and the scorer sees what was found either way.
func (p *Pipeline) gatherFacts(query *model.StructuredQuery) []llm.FactContext {
	period := ""
	if query.Period != nil {
		period = query.Period.Key()
	}

	idx := p.universe.Current()
	var out []llm.FactContext

	for _, ticker := range query.TickerSymbols() {
		for _, metricID := range query.MetricIDs() {
			def, ok := p.catalog.Get(metricID)
			if !ok {
				continue
			}
			val, ok := p.store.Lookup(ticker, metricID, period)
			if !ok {
				logging.Debug("no ground truth",
					zap.String("ticker", ticker),
					zap.String("metric", metricID),
					zap.String("period", period))
				continue
			}
			out = append(out, llm.FactContext{
				Ticker: ticker,
				Name:   idx.Name(ticker),
				Metric: metricID,
				Kind:   def.Unit,
				Period: period,
				Value:  val.Amount,
				Source: val.Source,
			})
		}
	}
	return out
}

func distinctSources(gathered []llm.FactContext) int {
	seen := make(map[string]bool)
	for _, f := range gathered {
		if f.Source != "" {
			seen[f.Source] = true
		}
	}
	return len(seen)
}

func generatorLabel(provider, model string) string {
	if model == "" || model == provider {
		return provider
	}
	return provider + "/" + model
}
