package sites

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ppiankov/tierscope/internal/model"
)

const createSitesTable = `
CREATE TABLE IF NOT EXISTS sites (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	url        TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps sites in a SQLite database
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLiteStore opens or creates the database at path
func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "create sites directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "open SQLite database at %q", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createSitesTable); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "create sites table")
	}

	return &SQLiteStore{db: db, log: log}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns sites in insertion order
func (s *SQLiteStore) List(ctx context.Context) ([]model.Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, url FROM sites ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "query sites")
	}
	defer func() { _ = rows.Close() }()

	sites := []model.Site{}
	for rows.Next() {
		var site model.Site
		if err := rows.Scan(&site.Name, &site.URL); err != nil {
			return nil, eris.Wrap(err, "scan site")
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate sites")
	}
	return sites, nil
}

// Add inserts a site
func (s *SQLiteStore) Add(ctx context.Context, name, rawURL string) error {
	site, err := Validate(name, rawURL)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sites (name, url, created_at) VALUES (?, ?, ?)`,
		site.Name, site.URL, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "insert site")
	}

	s.log.Info("site added", zap.String("name", site.Name), zap.String("url", site.URL))
	return nil
}

// Find returns the site named name
func (s *SQLiteStore) Find(ctx context.Context, name string) (model.Site, error) {
	sites, err := s.List(ctx)
	if err != nil {
		return model.Site{}, err
	}
	return find(sites, name)
}
