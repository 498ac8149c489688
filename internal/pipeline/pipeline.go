// Package pipeline runs scrape, extract, answer and evaluate for a site.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/evaluate"
	"github.com/ppiankov/tierscope/internal/extract"
	"github.com/ppiankov/tierscope/internal/llm"
	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/query"
	"github.com/ppiankov/tierscope/internal/scrape"
	"github.com/ppiankov/tierscope/internal/sites"
)

// Pipeline orchestrates the per-site runs
type Pipeline struct {
	store     sites.Store
	scrapers  *scrape.Registry
	completer llm.Completer
	cost      llm.CostCalculator
	config    *model.Config
	log       *zap.Logger
}

// New creates a pipeline. store may be nil when sites are always passed explicitly.
func New(cfg *model.Config, store sites.Store, scrapers *scrape.Registry, completer llm.Completer, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		store:     store,
		scrapers:  scrapers,
		completer: completer,
		cost:      llm.NewCostCalculator(cfg.Pricing.CostPerMillionTokens),
		config:    cfg,
		log:       log,
	}
}

// Site looks up a stored site by name
func (p *Pipeline) Site(ctx context.Context, name string) (model.Site, error) {
	if p.store == nil {
		return model.Site{}, eris.New("no site store configured")
	}
	return p.store.Find(ctx, name)
}

// run holds the per-invocation logger and metered completer
type run struct {
	id      string
	log     *zap.Logger
	meter   *llm.Meter
	started time.Time
}

func (p *Pipeline) newRun(site model.Site, stage string) *run {
	id := uuid.New().String()
	log := p.log.With(
		zap.String("run_id", id),
		zap.String("site", site.Name),
		zap.String("stage", stage),
	)
	return &run{
		id:      id,
		log:     log,
		meter:   llm.NewMeter(llm.WithLogging(p.completer, log)),
		started: time.Now(),
	}
}

func (p *Pipeline) scrape(ctx context.Context, r *run, site model.Site, strategy string) (*scrape.Result, error) {
	scraper, err := p.scrapers.Get(strategy)
	if err != nil {
		return nil, err
	}

	r.log.Info("scraping", zap.String("url", site.URL), zap.String("strategy", strategy))
	res, err := scraper.Scrape(ctx, site.URL)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape %s", site.Name)
	}
	r.log.Info("scraped",
		zap.Int("content_bytes", len(res.Content)),
		zap.Bool("from_cache", res.FromCache),
	)
	return res, nil
}

// ExtractSite scrapes the site and extracts its cheapest, middle and most expensive tiers.
// A page with no usable pricing yields a report whose outcome carries the error message.
func (p *Pipeline) ExtractSite(ctx context.Context, site model.Site, strategy string) (*model.ExtractionReport, error) {
	if strategy == "" {
		strategy = p.config.Scrape.Strategy
	}
	r := p.newRun(site, "extract")

	res, err := p.scrape(ctx, r, site, strategy)
	if err != nil {
		return nil, err
	}

	extractor := extract.NewExtractor(r.meter, p.config.Extraction.ChunkSize, r.log)
	result, err := extractor.ExtractRun(ctx, res.Content)

	report := &model.ExtractionReport{
		RunID:     r.id,
		Site:      site,
		Strategy:  strategy,
		ScrapedAt: res.FetchedAt,
	}

	switch {
	case err == nil:
		report.Outcome = model.SucceededExtraction(result.Extraction)
	case errors.Is(err, extract.ErrNoPricing):
		r.log.Warn("no pricing extracted", zap.Error(err))
		report.Outcome = model.FailedExtraction()
	default:
		return nil, eris.Wrapf(err, "extract %s", site.Name)
	}

	if result != nil {
		report.Chunks = result.Chunks
		report.Dropped = result.Dropped
	}
	p.finish(r, &report.Usage, &report.CostUSD, &report.DurationMS)
	return report, nil
}

// AskSite scrapes the site and answers a free-form question over the whole page
func (p *Pipeline) AskSite(ctx context.Context, site model.Site, question string) (*model.AnswerReport, error) {
	r := p.newRun(site, "ask")

	strategy, _, answer, err := p.answer(ctx, r, site, question)
	if err != nil {
		return nil, err
	}

	report := &model.AnswerReport{
		RunID:    r.id,
		Site:     site,
		Question: questionOrDefault(question),
		Strategy: strategy,
		Answer:   answer,
	}
	p.finish(r, &report.Usage, &report.CostUSD, &report.DurationMS)
	return report, nil
}

// EvaluateSite answers the question for the site and grades the answer against expected tiers
func (p *Pipeline) EvaluateSite(ctx context.Context, site model.Site, question string, expected model.TierSet) (*model.EvaluationReport, error) {
	r := p.newRun(site, "evaluate")

	strategy, res, answer, err := p.answer(ctx, r, site, question)
	if err != nil {
		return nil, err
	}

	result := evaluate.NewEvaluator(r.log).EvaluateAnswer(answer, expected)

	report := &model.EvaluationReport{
		RunID:     r.id,
		Site:      site,
		Question:  questionOrDefault(question),
		Strategy:  strategy,
		ScrapedAt: res.FetchedAt,
		Expected:  expected,
		Answer:    answer,
		Result:    result,
	}
	p.finish(r, &report.Usage, &report.CostUSD, &report.DurationMS)
	return report, nil
}

func (p *Pipeline) answer(ctx context.Context, r *run, site model.Site, question string) (string, *scrape.Result, *model.QueryAnswer, error) {
	strategy := p.config.Scrape.QueryStrategy
	if strategy == "" {
		strategy = scrape.StrategyJina
	}

	res, err := p.scrape(ctx, r, site, strategy)
	if err != nil {
		return "", nil, nil, err
	}

	answer, err := query.NewAnswerer(r.meter, r.log).Answer(ctx, query.Request{
		Site:     site.Name,
		Content:  res.Content,
		Question: question,
	})
	if err != nil {
		return "", nil, nil, eris.Wrapf(err, "answer %s", site.Name)
	}
	return strategy, res, answer, nil
}

func (p *Pipeline) finish(r *run, usage *model.Usage, cost *float64, durationMS *int64) {
	*usage = r.meter.Usage()
	*cost = p.cost.Cost(*usage)
	*durationMS = time.Since(r.started).Milliseconds()

	r.log.Info("run complete",
		zap.Int("llm_calls", r.meter.Calls()),
		zap.Int("tokens", usage.Tokens()),
		zap.Float64("estimated_cost_usd", *cost),
		zap.Int64("duration_ms", *durationMS),
	)
}

func questionOrDefault(q string) string {
	if q == "" {
		return query.DefaultQuestion
	}
	return q
}
