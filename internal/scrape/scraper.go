// Package scrape fetches competitor pages and turns them into text for extraction.
package scrape

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Strategy names
const (
	StrategyHTML = "html"
	StrategyText = "text"
	StrategyJina = "jina"
)

// ErrUnknownStrategy is returned by Registry.Get for an unregistered name
var ErrUnknownStrategy = errors.New("unknown scrape strategy")

// Result holds the scraped content of one page
type Result struct {
	Content     string    `json:"content"`
	Strategy    string    `json:"strategy"`
	URL         string    `json:"url"`
	FinalURL    string    `json:"final_url"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
	FromCache   bool      `json:"-"`
}

// Scraper fetches a single URL and returns its content
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
}

// Registry holds the available scraping strategies by name
type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]Scraper
}

// NewRegistry creates a registry holding the given scrapers under their own names
func NewRegistry(scrapers ...Scraper) *Registry {
	r := &Registry{scrapers: make(map[string]Scraper)}
	for _, s := range scrapers {
		r.Register(s.Name(), s)
	}
	return r
}

// Register adds or replaces a strategy
func (r *Registry) Register(name string, s Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrapers[name] = s
}

// Get returns the strategy registered under name
func (r *Registry) Get(name string) (Scraper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scrapers[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownStrategy, "%q (available: %v)", name, r.namesLocked())
	}
	return s, nil
}

// Names returns the registered strategy names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.scrapers))
	for name := range r.scrapers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
