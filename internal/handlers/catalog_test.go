package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

func newCatalogHandler() *CatalogHandler {
	return NewCatalogHandler(common.NewSilentLogger(), LoadTemplates(), false)
}

func TestCatalogHandler_List(t *testing.T) {
	w := httptest.NewRecorder()
	newCatalogHandler().List(w, httptest.NewRequest("GET", "/api/instruments", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Instruments []models.Instrument `json:"instruments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(body.Instruments) == 0 {
		t.Error("expected instruments in response")
	}
}

func TestCatalogHandler_Get(t *testing.T) {
	mux := http.NewServeMux()
	h := newCatalogHandler()
	mux.HandleFunc("GET /api/instruments/{symbol}", h.Get)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/instruments/spy", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var inst models.Instrument
	json.Unmarshal(w.Body.Bytes(), &inst)
	if inst.Symbol != "SPY" {
		t.Errorf("expected SPY, got %s", inst.Symbol)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/instruments/NOPE", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown symbol, got %d", w.Code)
	}
}

func TestCatalogHandler_Periods(t *testing.T) {
	w := httptest.NewRecorder()
	newCatalogHandler().Periods(w, httptest.NewRequest("GET", "/api/periods", nil))

	var body struct {
		Periods []struct {
			Code  string `json:"code"`
			Label string `json:"label"`
		} `json:"periods"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(body.Periods) != len(models.AllPeriods) {
		t.Fatalf("expected %d periods, got %d", len(models.AllPeriods), len(body.Periods))
	}
	if body.Periods[0].Code != "1mo" || body.Periods[0].Label != "1 mes" {
		t.Errorf("unexpected first period: %+v", body.Periods[0])
	}
	if body.Periods[7].Code != "10y" {
		t.Errorf("expected canonical order ending in 10y, got %s", body.Periods[7].Code)
	}
}

func TestCatalogHandler_ResumenPage(t *testing.T) {
	w := httptest.NewRecorder()
	newCatalogHandler().ServePage(w, httptest.NewRequest("GET", "/resumen?symbols=spy&symbols=GLD,NOPE", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()

	for _, want := range []string{
		"Instrumento: SPDR S&amp;P 500 ETF Trust",
		"Instrumento: SPDR Gold Shares",
		"<strong>Paga Dividendos:</strong> No",
		`id="go-estadistica"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
	if strings.Contains(body, "NOPE") {
		t.Error("unknown symbols must be dropped from the page")
	}
}

func TestCatalogHandler_ResumenEscapesInput(t *testing.T) {
	w := httptest.NewRecorder()
	newCatalogHandler().ServePage(w, httptest.NewRequest("GET", "/resumen?symbols=%3Cscript%3Ealert(1)%3C/script%3E", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<script>alert(1)</script>") {
		t.Error("query input must never be reflected unescaped")
	}
}
