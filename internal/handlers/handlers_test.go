package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/market"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
	"github.com/bobmcallan/optimaxx-portal/internal/stats"
)

// testService builds a real engine over canned prices. Any symbol/period
// without data fails to fetch.
func testService(data map[string][]float64) *stats.Engine {
	fetcher := market.FetcherFunc(func(_ context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error) {
		closes, ok := data[models.SeriesKey(symbol, period)]
		if !ok {
			return models.PriceSeries{}, &market.FetchError{Symbol: symbol, Period: period, Err: market.ErrNoData}
		}
		s := models.PriceSeries{Symbol: symbol, Period: period, FetchedAt: time.Now()}
		for i, c := range closes {
			s.Points = append(s.Points, models.PricePoint{Time: time.Unix(int64(i)*86400, 0), Close: c})
		}
		return s, nil
	})
	return stats.New(fetcher, stats.Config{MinCapital: 500000, MaxConcurrency: 2, Currency: "USD"}, common.NewSilentLogger())
}

func TestHealthHandler_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)
	handler.SetStoreStatus(func() string { return "ok" })

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["store"] != "ok" {
		t.Errorf("expected store ok, got %v", body["store"])
	}
	if n, _ := body["instruments"].(float64); n == 0 {
		t.Error("expected instrument count in health response")
	}
}

type fixedHistory []models.WarmRun

func (h fixedHistory) Record(context.Context, models.WarmRun) error { return nil }

func (h fixedHistory) Recent(_ context.Context, n int) ([]models.WarmRun, error) {
	if n > len(h) {
		n = len(h)
	}
	return h[:n], nil
}

func TestHealthHandler_ReportsLastWarm(t *testing.T) {
	handler := NewHealthHandler(common.NewSilentLogger())
	handler.SetWarmHistory(fixedHistory{{ID: "run-2", Fetched: 96}, {ID: "run-1", Fetched: 90}})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	var body struct {
		Store    string         `json:"store"`
		LastWarm models.WarmRun `json:"last_warm"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Store != "disabled" {
		t.Errorf("expected store disabled without a status func, got %q", body.Store)
	}
	if body.LastWarm.ID != "run-2" || body.LastWarm.Fetched != 96 {
		t.Errorf("unexpected last warm: %+v", body.LastWarm)
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("POST", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestServeVersion(t *testing.T) {
	w := httptest.NewRecorder()
	ServeVersion(w, httptest.NewRequest("GET", "/api/version", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	for _, key := range []string{"version", "build", "git_commit", "go_version"} {
		if _, ok := body[key]; !ok {
			t.Errorf("expected %s field in response", key)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		method string
		ok     bool
	}{
		{"GET", true},
		{"HEAD", true},
		{"POST", true},
		{"PUT", false},
		{"DELETE", false},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		got := RequireMethod(w, httptest.NewRequest(tt.method, "/test", nil), "GET", "POST")
		if got != tt.ok {
			t.Errorf("%s: RequireMethod = %v, want %v", tt.method, got, tt.ok)
		}
		if !tt.ok {
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s: status %d, want 405", tt.method, w.Code)
			}
			if allow := w.Header().Get("Allow"); allow != "GET, POST" {
				t.Errorf("%s: Allow = %q", tt.method, allow)
			}
		}
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidationError(w, &models.ValidationError{Field: "weights", Message: "must sum to 100"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["status"] != "error" || body["field"] != "weights" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestLandingHandler(t *testing.T) {
	handler := NewLandingHandler(common.NewSilentLogger(), LoadTemplates(), false)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "OptiMaxx") {
		t.Error("expected landing page to mention OptiMaxx")
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown page, got %d", w.Code)
	}
}

func TestStaticHandler(t *testing.T) {
	h := StaticHandler()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"stylesheet", "/static/css/portal.css", http.StatusOK},
		{"missing", "/static/css/nope.css", http.StatusNotFound},
		{"directory", "/static/css/", http.StatusNotFound},
		{"traversal", "/static/../landing.html", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/static/x", nil)
			req.URL.Path = tt.path
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
			}
		})
	}
}
