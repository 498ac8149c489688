package worker

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/model"
)

// SiteExtractor runs a tier extraction for one site
type SiteExtractor interface {
	ExtractSite(ctx context.Context, site model.Site, strategy string) (*model.ExtractionReport, error)
}

// SiteJob represents one site extraction
type SiteJob struct {
	Site      model.Site
	Strategy  string
	Extractor SiteExtractor
}

// Execute runs the extraction
func (j *SiteJob) Execute(ctx context.Context) Result {
	report, err := j.Extractor.ExtractSite(ctx, j.Site, j.Strategy)
	return &SiteResult{
		Site:   j.Site,
		Report: report,
		Error:  err,
	}
}

// SiteResult represents the result of a site job
type SiteResult struct {
	Site   model.Site
	Report *model.ExtractionReport
	Error  error
}

// GetError returns the error from the site result
func (r *SiteResult) GetError() error {
	return r.Error
}

// BatchProcessor extracts pricing for many sites concurrently.
// Each site's extraction stays sequential internally.
type BatchProcessor struct {
	extractor   SiteExtractor
	concurrency int
	log         *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(extractor SiteExtractor, concurrency int, log *zap.Logger) *BatchProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
		log:         log,
	}
}

// ProcessSites extracts every site and returns results ordered by site name
func (b *BatchProcessor) ProcessSites(ctx context.Context, sites []model.Site, strategy string) []*SiteResult {
	if len(sites) == 0 {
		return []*SiteResult{}
	}

	b.log.Info("batch started", zap.Int("sites", len(sites)), zap.Int("concurrency", b.concurrency))

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, site := range sites {
		job := &SiteJob{Site: site, Strategy: strategy, Extractor: b.extractor}
		if err := pool.Submit(job); err != nil {
			b.log.Warn("batch cancelled before all sites were queued", zap.Error(err))
			break
		}
	}

	results := pool.Wait()

	siteResults := make([]*SiteResult, 0, len(results))
	failed := 0
	for _, result := range results {
		sr := result.(*SiteResult)
		if sr.Error != nil {
			failed++
		}
		siteResults = append(siteResults, sr)
	}

	sort.SliceStable(siteResults, func(i, j int) bool {
		if siteResults[i].Site.Name != siteResults[j].Site.Name {
			return siteResults[i].Site.Name < siteResults[j].Site.Name
		}
		return siteResults[i].Site.URL < siteResults[j].Site.URL
	})

	b.log.Info("batch finished", zap.Int("sites", len(siteResults)), zap.Int("failed", failed))
	return siteResults
}

// ReadSiteNames reads site names from a file (one per line).
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadSiteNames(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, eris.Wrap(err, "open file")
	}
	defer func() { _ = file.Close() }()

	var names []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			names = append(names, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "scan file")
	}

	return names, nil
}
