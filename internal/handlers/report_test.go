package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
)

func newReportHandler(data map[string][]float64) *ReportHandler {
	return NewReportHandler(common.NewSilentLogger(), LoadTemplates(), false, testService(data))
}

const reportQuery = "symbols=SPY&capital=500000&period=1y"

func TestReportHandler_HTML(t *testing.T) {
	h := newReportHandler(map[string][]float64{"SPY:1y": {100, 110}})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/report?"+reportQuery, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{
		"<h1>Portafolio de Inversión</h1>",
		"<table>",
		"$50,000.00",
		"/api/charts/expected.png?",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}
}

func TestReportHandler_Markdown(t *testing.T) {
	h := newReportHandler(map[string][]float64{"SPY:1y": {100, 110}})

	req := httptest.NewRequest("GET", "/report?"+reportQuery, nil)
	req.Header.Set("Accept", "text/markdown")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("expected markdown content type, got %s", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "# Portafolio de Inversión") {
		t.Errorf("expected markdown heading, got %q", body[:min(len(body), 40)])
	}
	if !strings.Contains(body, "| ETF |") {
		t.Error("expected metrics table")
	}
}

func TestReportHandler_FormPost(t *testing.T) {
	h := newReportHandler(map[string][]float64{"SPY:1y": {100, 110}})

	form := url.Values{"symbols": {"SPY"}, "capital": {"500000"}, "period": {"1y"}, "format": {"md"}}
	req := httptest.NewRequest("POST", "/report", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "**$50,000.00**") {
		t.Error("expected the selected expected return in bold")
	}
}

func TestReportHandler_ValidationError(t *testing.T) {
	h := newReportHandler(nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/report?symbols=SPY&capital=10&period=1y", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "capital") {
		t.Errorf("expected capital message, got %q", w.Body.String())
	}
}

func TestReportHandler_EscapesSymbols(t *testing.T) {
	h := newReportHandler(map[string][]float64{"<SCRIPT>:1y": {100, 110}})

	req := httptest.NewRequest("GET", "/report?symbols=%3Cscript%3E&capital=500000&period=1y", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if strings.Contains(strings.ToLower(w.Body.String()), "<script>") {
		t.Error("symbol text must not be rendered as raw HTML")
	}
}

func TestReportHandler_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	newReportHandler(nil).ServeHTTP(w, httptest.NewRequest("DELETE", "/report", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
