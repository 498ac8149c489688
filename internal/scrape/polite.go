package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/util"
	"github.com/ppiankov/tierscope/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Polite checks robots.txt and throttles per domain before delegating.
// Either guard may be nil.
type Polite struct {
	next    Scraper
	robots  *util.RobotsChecker
	limiter *worker.Limiter
	log     *zap.Logger
}

// NewPolite wraps next with robots.txt and rate limit checks
func NewPolite(next Scraper, robots *util.RobotsChecker, limiter *worker.Limiter, log *zap.Logger) *Polite {
	if log == nil {
		log = zap.NewNop()
	}
	return &Polite{next: next, robots: robots, limiter: limiter, log: log}
}

// Name returns the wrapped strategy name
func (p *Polite) Name() string {
	return p.next.Name()
}

// Scrape waits for permission and then scrapes
func (p *Polite) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	var crawlDelay time.Duration
	if p.robots != nil {
		allowed, delay, err := p.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, eris.Wrap(err, "robots check")
		}
		if !allowed {
			p.log.Warn("robots.txt disallows fetch", zap.String("url", rawURL))
			return nil, eris.Wrapf(ErrDisallowed, "%s", rawURL)
		}
		crawlDelay = delay
	}

	if p.limiter != nil {
		if err := p.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, eris.Wrap(err, "rate limit")
		}
	}

	return p.next.Scrape(ctx, rawURL)
}
