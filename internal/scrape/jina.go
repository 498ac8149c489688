package scrape

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultJinaBaseURL is the public Jina Reader endpoint
const DefaultJinaBaseURL = "https://r.jina.ai"

// JinaScraper reads pages through the Jina Reader proxy, which renders them to text
type JinaScraper struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	maxBytes int64
}

// NewJinaScraper creates a JinaScraper. An empty baseURL uses DefaultJinaBaseURL.
func NewJinaScraper(client *http.Client, baseURL, apiKey string, maxBytes int64) *JinaScraper {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultJinaBaseURL
	}
	return &JinaScraper{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		maxBytes: maxBytes,
	}
}

// Name returns the strategy name
func (s *JinaScraper) Name() string {
	return StrategyJina
}

// Scrape fetches base/<url> and returns the response text
func (s *JinaScraper) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	headers := map[string]string{"Accept": "text/plain"}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	p, err := get(ctx, s.client, s.baseURL+"/"+rawURL, headers, s.maxBytes)
	if err != nil {
		return nil, eris.Wrapf(err, "jina read %s", rawURL)
	}

	return &Result{
		Content:     string(p.body),
		Strategy:    StrategyJina,
		URL:         rawURL,
		FinalURL:    rawURL,
		StatusCode:  p.statusCode,
		ContentType: p.contentType,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
