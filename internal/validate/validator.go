// Package validate checks that tracked pricing pages are still reachable.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/util"
)

const (
	validateMaxRetries = 3
	staleAfter         = 365 * 24 * time.Hour
)

// validateSleepFunc is the sleep function used between retries (injectable for tests)
var validateSleepFunc = time.Sleep

// Validator checks site URLs concurrently
type Validator struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int
	log        *zap.Logger
}

// NewValidator creates a new validator
func NewValidator(cfg model.HTTPConfig, maxWorkers int, log *zap.Logger) *Validator {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Validator{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  cfg.UserAgent,
		maxWorkers: maxWorkers,
		log:        log,
	}
}

// Validate checks every site and returns statuses in input order
func (v *Validator) Validate(ctx context.Context, sites []model.Site) []model.SiteStatus {
	results := make([]model.SiteStatus, len(sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxWorkers)

	for i, site := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = model.SiteStatus{Site: site, Error: "context cancelled"}
				return nil
			}
			results[i] = v.validateSingleWithRetry(gctx, site)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// validateSingle issues a HEAD request for one site
func (v *Validator) validateSingle(ctx context.Context, site model.Site) model.SiteStatus {
	result := model.SiteStatus{Site: site}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, site.URL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.Dead = true
		return result
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Reachable = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.Dead = true
	}

	if final := resp.Request.URL.String(); final != site.URL {
		result.RedirectURL = final
	}

	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		if t, err := http.ParseTime(lastModified); err == nil {
			result.LastModified = &t
			result.Stale = time.Since(t) > staleAfter
		}
	}

	return result
}

// validateSingleWithRetry retries transient failures with exponential backoff
func (v *Validator) validateSingleWithRetry(ctx context.Context, site model.Site) model.SiteStatus {
	var result model.SiteStatus
	for attempt := 0; attempt < validateMaxRetries; attempt++ {
		result = v.validateSingle(ctx, site)
		result.Attempts = attempt + 1
		if !isRetryable(result) || ctx.Err() != nil {
			break
		}
		if attempt < validateMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			v.log.Debug("retrying site check",
				zap.String("site", site.Name),
				zap.Int("status", result.StatusCode),
				zap.Duration("backoff", backoff),
			)
			validateSleepFunc(backoff)
		}
	}

	v.log.Info("site checked",
		zap.String("site", site.Name),
		zap.Bool("reachable", result.Reachable),
		zap.Int("status", result.StatusCode),
	)
	return result
}

// isRetryable returns true for results that indicate transient failures
func isRetryable(result model.SiteStatus) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if result.Error != "" {
		return isRetryableNetworkError(result.Error)
	}
	return false
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
