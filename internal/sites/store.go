// Package sites persists the list of tracked competitor sites.
package sites

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/model"
)

// Drivers
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

var (
	// ErrSiteNotFound is returned by Find for an unknown name
	ErrSiteNotFound = errors.New("site not found")

	// ErrInvalidSite is returned by Add for an empty name or a non-http(s) URL
	ErrInvalidSite = errors.New("invalid site")
)

// Store lists, adds and looks up competitor sites.
// Sites keep insertion order; names are not required to be unique.
type Store interface {
	List(ctx context.Context) ([]model.Site, error)
	Add(ctx context.Context, name, rawURL string) error
	Find(ctx context.Context, name string) (model.Site, error)
}

// Open returns the store selected by cfg.Driver
func Open(cfg model.SitesConfig, log *zap.Logger) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverJSON:
		return NewJSONStore(cfg.Path, log), nil
	case DriverSQLite:
		return NewSQLiteStore(cfg.Path, log)
	default:
		return nil, eris.Errorf("unknown sites driver: %s (supported: json, sqlite)", cfg.Driver)
	}
}

// Validate checks a site before it is stored
func Validate(name, rawURL string) (model.Site, error) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	if name == "" {
		return model.Site{}, eris.Wrap(ErrInvalidSite, "name is empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.Site{}, eris.Wrapf(ErrInvalidSite, "url %q: %v", rawURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return model.Site{}, eris.Wrapf(ErrInvalidSite, "url %q must be an absolute http(s) URL", rawURL)
	}

	return model.Site{Name: name, URL: rawURL}, nil
}

// find returns the first site named name, falling back to a case-insensitive match
func find(sites []model.Site, name string) (model.Site, error) {
	for _, s := range sites {
		if s.Name == name {
			return s, nil
		}
	}
	for _, s := range sites {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return model.Site{}, eris.Wrapf(ErrSiteNotFound, "%q", name)
}
