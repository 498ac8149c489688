package scrape

import (
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/cache"
	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/util"
	"github.com/ppiankov/tierscope/internal/worker"
)

// NewDefaultRegistry builds the html, text and jina strategies from config.
// Each is wrapped with the polite guards and, when enabled, the scrape cache.
func NewDefaultRegistry(cfg *model.Config, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}

	client := NewHTTPClient(cfg.HTTP)
	htmlScraper := NewHTMLScraper(cfg.HTTP, client)
	base := []Scraper{
		htmlScraper,
		NewTextScraper(htmlScraper),
		NewJinaScraper(client, cfg.Scrape.JinaBaseURL, cfg.Scrape.JinaAPIKey, cfg.HTTP.MaxBodyBytes),
	}

	var robots *util.RobotsChecker
	if cfg.Scrape.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, client, cfg.HTTP.Timeout, log)
	}
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	registry := NewRegistry()
	for _, s := range base {
		var wrapped Scraper = NewPolite(s, robots, limiter, log.With(zap.String("strategy", s.Name())))
		if store != nil {
			wrapped = NewCached(wrapped, store, cfg.Cache.DiskTTL, log)
		}
		registry.Register(s.Name(), wrapped)
	}
	return registry
}
