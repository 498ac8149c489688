package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/tierscope/internal/model"
)

func init() {
	// Disable retry sleep in all tests for fast execution
	validateSleepFunc = func(d time.Duration) {}
}

func testValidator(workers int) *Validator {
	return NewValidator(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "Tierscope-Test/1.0"}, workers, nil)
}

func TestValidator_ValidateSingle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "Tierscope-Test/1.0" {
			t.Errorf("Unexpected User-Agent %q", ua)
		}
		w.Header().Set("Last-Modified", time.Now().Add(-24*time.Hour).UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := testValidator(4).validateSingle(context.Background(), model.Site{Name: "Acme", URL: server.URL})

	if !result.Reachable {
		t.Error("Expected site to be reachable")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", result.StatusCode)
	}
	if result.Dead {
		t.Error("Expected site not to be dead")
	}
	if result.LastModified == nil {
		t.Fatal("Expected Last-Modified to be parsed")
	}
	if result.Stale {
		t.Error("Expected a page modified yesterday not to be stale")
	}
}

func TestValidator_ValidateSingle_404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := testValidator(4).validateSingle(context.Background(), model.Site{URL: server.URL})

	if result.Reachable {
		t.Error("Expected 404 site not to be reachable")
	}
	if !result.Dead {
		t.Error("Expected 404 site to be marked as dead")
	}
}

func TestValidator_ValidateSingle_Redirect(t *testing.T) {
	finalServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer finalServer.Close()

	redirectServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalServer.URL+"/pricing", http.StatusMovedPermanently)
	}))
	defer redirectServer.Close()

	result := testValidator(4).validateSingle(context.Background(), model.Site{URL: redirectServer.URL})

	if !result.Reachable {
		t.Error("Expected redirected site to be reachable")
	}
	if result.RedirectURL != finalServer.URL+"/pricing" {
		t.Errorf("Expected redirect URL %s, got %s", finalServer.URL+"/pricing", result.RedirectURL)
	}
}

func TestValidator_ValidateSingle_Staleness(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := testValidator(4).validateSingle(context.Background(), model.Site{URL: server.URL})

	if !result.Stale {
		t.Error("Expected a page last modified in 2006 to be stale")
	}
}

func TestValidator_Validate_OrderAndConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sites := make([]model.Site, 10)
	for i := range sites {
		sites[i] = model.Site{Name: string(rune('a' + i)), URL: server.URL}
	}

	results := testValidator(3).Validate(context.Background(), sites)

	if len(results) != len(sites) {
		t.Fatalf("Expected %d results, got %d", len(sites), len(results))
	}
	for i, r := range results {
		if r.Site.Name != sites[i].Name {
			t.Errorf("Result %d: expected site %s, got %s", i, sites[i].Name, r.Site.Name)
		}
		if !r.Reachable {
			t.Errorf("Result %d: expected reachable", i)
		}
	}
	if peak.Load() > 3 {
		t.Errorf("Expected at most 3 concurrent checks, saw %d", peak.Load())
	}
}

func TestValidator_Validate_Empty(t *testing.T) {
	results := testValidator(4).Validate(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestValidator_Validate_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := testValidator(1).Validate(ctx, []model.Site{{Name: "a", URL: "http://127.0.0.1:1"}})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Reachable {
		t.Error("Expected cancelled check not to be reachable")
	}
	if results[0].Error == "" {
		t.Error("Expected an error for the cancelled check")
	}
}

func TestNewValidator_DefaultWorkers(t *testing.T) {
	if v := NewValidator(model.HTTPConfig{}, 0, nil); v.maxWorkers != 8 {
		t.Errorf("Expected default 8 workers, got %d", v.maxWorkers)
	}
}

func TestValidateSingleWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := testValidator(1).validateSingleWithRetry(context.Background(), model.Site{URL: server.URL})

	if !result.Reachable {
		t.Error("Expected success after retries")
	}
	if result.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", result.Attempts)
	}
}

func TestValidateSingleWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := testValidator(1).validateSingleWithRetry(context.Background(), model.Site{URL: server.URL})

	if !result.Dead {
		t.Error("Expected 404 to be dead")
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt for a 404, got %d", attempts.Load())
	}
}

func TestValidateSingleWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result := testValidator(1).validateSingleWithRetry(context.Background(), model.Site{URL: server.URL})

	if attempts.Load() != validateMaxRetries {
		t.Errorf("Expected %d attempts, got %d", validateMaxRetries, attempts.Load())
	}
	if result.Reachable {
		t.Error("Expected 429 not to be reachable")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name   string
		result model.SiteStatus
		want   bool
	}{
		{"500", model.SiteStatus{StatusCode: 500}, true},
		{"503", model.SiteStatus{StatusCode: 503}, true},
		{"429", model.SiteStatus{StatusCode: 429}, true},
		{"404", model.SiteStatus{StatusCode: 404}, false},
		{"200", model.SiteStatus{StatusCode: 200}, false},
		{"timeout", model.SiteStatus{Error: "request failed: i/o timeout"}, true},
		{"refused", model.SiteStatus{Error: "request failed: connection refused"}, true},
		{"dns", model.SiteStatus{Error: "request failed: no such host"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.result); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
