package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/tierscope/internal/model"
)

// mockExtractor implements SiteExtractor
type mockExtractor struct {
	failFor string
	calls   atomic.Int32
}

func (m *mockExtractor) ExtractSite(ctx context.Context, site model.Site, strategy string) (*model.ExtractionReport, error) {
	m.calls.Add(1)
	// finish in reverse name order so sorting is observable
	time.Sleep(time.Duration(10-len(site.Name)) * time.Millisecond)
	if site.Name == m.failFor {
		return nil, errors.New("scrape failed")
	}
	return &model.ExtractionReport{Site: site, Strategy: strategy}, nil
}

func TestBatchProcessor_ProcessSites(t *testing.T) {
	extractor := &mockExtractor{failFor: "Beta"}
	processor := NewBatchProcessor(extractor, 3, nil)

	sites := []model.Site{
		{Name: "Gamma", URL: "https://gamma.example"},
		{Name: "Alpha", URL: "https://alpha.example"},
		{Name: "Beta", URL: "https://beta.example"},
		{Name: "Delta", URL: "https://delta.example"},
	}

	results := processor.ProcessSites(context.Background(), sites, "text")
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if n := extractor.calls.Load(); n != 4 {
		t.Errorf("expected 4 extractor calls, got %d", n)
	}

	var names []string
	for _, r := range results {
		names = append(names, r.Site.Name)
	}
	want := []string{"Alpha", "Beta", "Delta", "Gamma"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected results sorted as %v, got %v", want, names)
	}

	if results[1].GetError() == nil {
		t.Error("expected error for Beta")
	}
	if results[1].Report != nil {
		t.Error("expected no report for failed site")
	}
	if results[0].Report == nil {
		t.Fatal("expected report for Alpha")
	}
	if results[0].Report.Strategy != "text" {
		t.Errorf("expected strategy text, got %s", results[0].Report.Strategy)
	}
}

func TestBatchProcessor_OrderIndependentOfConcurrency(t *testing.T) {
	sites := []model.Site{{Name: "b"}, {Name: "a"}, {Name: "c"}, {Name: "a", URL: "https://second"}}

	var previous []model.Site
	for _, workers := range []int{1, 2, 8} {
		results := NewBatchProcessor(&mockExtractor{}, workers, nil).ProcessSites(context.Background(), sites, "html")
		var got []model.Site
		for _, r := range results {
			got = append(got, r.Site)
		}
		if previous != nil && !reflect.DeepEqual(previous, got) {
			t.Errorf("order with %d workers differs: %v vs %v", workers, got, previous)
		}
		previous = got
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	results := NewBatchProcessor(&mockExtractor{}, 2, nil).ProcessSites(context.Background(), nil, "text")
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestReadSiteNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.txt")
	if err := os.WriteFile(path, []byte("Mindsmith AI\n# comment\n\n  Acme  \nMindsmith AI\n"), 0o644); err != nil {
		t.Fatalf("failed to write sites file: %v", err)
	}

	names, err := ReadSiteNames(path)
	if err != nil {
		t.Fatalf("ReadSiteNames failed: %v", err)
	}
	want := []string{"Mindsmith AI", "Acme"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestReadSiteNames_NonExistent(t *testing.T) {
	if _, err := ReadSiteNames("no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestSiteResult_GetError(t *testing.T) {
	if err := (&SiteResult{}).GetError(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}

	expected := errors.New("extract failed")
	if err := (&SiteResult{Error: expected}).GetError(); err != expected {
		t.Errorf("expected %v, got %v", expected, err)
	}
}
