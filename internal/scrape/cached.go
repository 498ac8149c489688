package scrape

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/tierscope/internal/cache"
)

// Cached serves repeat scrapes from a cache. Concurrent misses for the
// same page share one underlying scrape.
type Cached struct {
	next  Scraper
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
	log   *zap.Logger
}

// NewCached wraps next with a cache. A zero ttl uses the cache's default.
func NewCached(next Scraper, c cache.Cache, ttl time.Duration, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{next: next, cache: c, ttl: ttl, log: log}
}

// Name returns the wrapped strategy name
func (c *Cached) Name() string {
	return c.next.Name()
}

// Scrape returns the cached page or scrapes and stores it
func (c *Cached) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	key := cache.Key(c.next.Name(), rawURL)

	if res, ok := c.lookup(key); ok {
		c.log.Debug("scrape cache hit", zap.String("url", rawURL), zap.String("strategy", c.next.Name()))
		return res, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		res, err := c.next.Scrape(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(res)
		if err != nil {
			return nil, eris.Wrap(err, "encode scrape result")
		}
		if err := c.cache.Set(key, data, c.ttl); err != nil {
			c.log.Warn("scrape cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	res := *v.(*Result)
	return &res, nil
}

func (c *Cached) lookup(key string) (*Result, bool) {
	data, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		_ = c.cache.Delete(key)
		return nil, false
	}
	res.FromCache = true
	return &res, true
}
