package sites

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/model"
)

// JSONStore keeps sites in a flat JSON array file
type JSONStore struct {
	mu    sync.Mutex
	path  string
	sites []model.Site
	log   *zap.Logger
}

// NewJSONStore loads the file at path. A missing or malformed file starts an empty list.
func NewJSONStore(path string, log *zap.Logger) *JSONStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &JSONStore{path: path, log: log}
	s.sites = s.load()
	return s
}

func (s *JSONStore) load() []model.Site {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("sites file not found, starting empty", zap.String("path", s.path))
		return []model.Site{}
	}
	if err != nil {
		s.log.Error("read sites file", zap.String("path", s.path), zap.Error(err))
		return []model.Site{}
	}

	var sites []model.Site
	if err := json.Unmarshal(data, &sites); err != nil {
		s.log.Error("decode sites file, starting empty", zap.String("path", s.path), zap.Error(err))
		return []model.Site{}
	}

	s.log.Info("sites loaded", zap.String("path", s.path), zap.Int("count", len(sites)))
	return sites
}

// List returns a copy of the stored sites
func (s *JSONStore) List(ctx context.Context) ([]model.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Site, len(s.sites))
	copy(out, s.sites)
	return out, nil
}

// Add appends a site and writes the file
func (s *JSONStore) Add(ctx context.Context, name, rawURL string) error {
	site, err := Validate(name, rawURL)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sites := append(append([]model.Site{}, s.sites...), site)
	if err := s.save(sites); err != nil {
		return err
	}
	s.sites = sites

	s.log.Info("site added", zap.String("name", site.Name), zap.String("url", site.URL))
	return nil
}

// Find returns the site named name
func (s *JSONStore) Find(ctx context.Context, name string) (model.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.sites, name)
}

func (s *JSONStore) save(sites []model.Site) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "create sites directory")
		}
	}

	data, err := json.MarshalIndent(sites, "", "    ")
	if err != nil {
		return eris.Wrap(err, "encode sites")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrap(err, "write sites file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "replace sites file")
	}
	return nil
}
