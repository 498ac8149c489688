package scrape

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/util"
)

const maxRedirects = 3

// NewHTTPClient builds the scraping client: timeout, redirect cap and proxy settings
func NewHTTPClient(cfg model.HTTPConfig) *http.Client {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return eris.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// page is a raw HTTP response body with its metadata
type page struct {
	body        []byte
	statusCode  int
	contentType string
	finalURL    string
}

// get performs a GET with the given headers and reads at most maxBytes of the body.
// Non-2xx responses are errors.
func get(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, maxBytes int64) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	reader := io.Reader(resp.Body)
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, maxBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}

	return &page{
		body:        body,
		statusCode:  resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		finalURL:    resp.Request.URL.String(),
	}, nil
}

// HTMLScraper returns the raw HTML of a page
type HTMLScraper struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTMLScraper creates an HTMLScraper. A nil client is built from cfg.
func NewHTMLScraper(cfg model.HTTPConfig, client *http.Client) *HTMLScraper {
	if client == nil {
		client = NewHTTPClient(cfg)
	}
	return &HTMLScraper{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

// Name returns the strategy name
func (s *HTMLScraper) Name() string {
	return StrategyHTML
}

// Scrape fetches the page
func (s *HTMLScraper) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	p, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.result(rawURL, p, string(p.body)), nil
}

func (s *HTMLScraper) fetch(ctx context.Context, rawURL string) (*page, error) {
	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if s.userAgent != "" {
		headers["User-Agent"] = s.userAgent
	}
	p, err := get(ctx, s.client, rawURL, headers, s.maxBytes)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape %s", rawURL)
	}
	return p, nil
}

func (s *HTMLScraper) result(rawURL string, p *page, content string) *Result {
	return &Result{
		Content:     content,
		URL:         rawURL,
		FinalURL:    p.finalURL,
		StatusCode:  p.statusCode,
		ContentType: p.contentType,
		FetchedAt:   time.Now().UTC(),
		Strategy:    StrategyHTML,
	}
}
