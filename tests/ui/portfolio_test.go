package tests

import (
	"strings"
	"testing"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
	"github.com/bobmcallan/optimaxx-portal/tests/common"
	"github.com/chromedp/chromedp"
)

func TestResumenShowsSelectedInstruments(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	if err := common.SelectInstruments(ctx, "SPY", "QQQ"); err != nil {
		t.Fatal(err)
	}
	takeScreenshot(t, ctx, "portfolio", "resumen-selected.png")

	n, err := common.ElementCount(ctx, "article.instrument")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("instrument cards = %d, want 2", n)
	}
	requireText(t, ctx, `article.instrument[data-symbol="SPY"]`, "Moneda")
}

func TestEstadisticaWithoutSelection(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	navigate(t, ctx, "/estadistica")
	requireVisible(t, ctx, "#no-selection")

	exists, err := common.Exists(ctx, "#stats-form")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("stats form rendered without a selection")
	}
}

func TestEstadisticaWeightInputs(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	if err := common.SelectInstruments(ctx, "SPY", "QQQ"); err != nil {
		t.Fatal(err)
	}
	if err := chromedp.Run(ctx, chromedp.Click("#go-estadistica", chromedp.ByQuery)); err != nil {
		t.Fatal(err)
	}
	requireVisible(t, ctx, "#stats-form")

	for _, sym := range []string{"SPY", "QQQ"} {
		requireVisible(t, ctx, `#stats-form input[name="w_`+sym+`"]`)
	}
	options, err := common.ElementCount(ctx, `#stats-form select[name="period"] option`)
	if err != nil {
		t.Fatal(err)
	}
	if options != len(models.AllPeriods) {
		t.Errorf("period options = %d, want %d", options, len(models.AllPeriods))
	}
}

func TestEstadisticaWeightSumValidation(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	navigate(t, ctx, "/estadistica?symbols=SPY,QQQ")
	if err := common.FillPortfolio(ctx, map[string]int{"SPY": 60, "QQQ": 30}, 0); err != nil {
		t.Fatal(err)
	}
	if err := common.Calculate(ctx); err != nil {
		t.Fatal(err)
	}
	takeScreenshot(t, ctx, "portfolio", "weights-invalid.png")

	requireText(t, ctx, "#validation-error", "100%")
	exists, err := common.Exists(ctx, "#metrics-table")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("metrics table rendered despite invalid weights")
	}
}

func TestEstadisticaCapitalBelowMinimum(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	navigate(t, ctx, "/estadistica?symbols=SPY")
	if err := common.FillPortfolio(ctx, nil, 1000); err != nil {
		t.Fatal(err)
	}
	// min and step on the number input block native submission.
	if err := chromedp.Run(ctx, chromedp.Evaluate(`
		(() => {
			const el = document.querySelector('#stats-form input[name="capital"]');
			el.removeAttribute('min');
			el.removeAttribute('step');
			return true;
		})()
	`, nil)); err != nil {
		t.Fatal(err)
	}
	if err := common.Calculate(ctx); err != nil {
		t.Fatal(err)
	}
	requireText(t, ctx, "#validation-error", "capital")
}

func TestEstadisticaCalculate(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	cfg := common.LoadTestConfig()
	navigate(t, ctx, "/estadistica?symbols="+strings.Join(cfg.Portfolio.Symbols, ","))

	weights := map[string]int{}
	remaining := 100
	for i, sym := range cfg.Portfolio.Symbols {
		w := 100 / len(cfg.Portfolio.Symbols)
		if i == len(cfg.Portfolio.Symbols)-1 {
			w = remaining
		}
		weights[sym] = w
		remaining -= w
	}
	if len(cfg.Portfolio.Symbols) == 1 {
		weights = nil
	}

	if err := common.FillPortfolio(ctx, weights, cfg.Portfolio.Capital); err != nil {
		t.Fatal(err)
	}
	if err := common.Calculate(ctx); err != nil {
		t.Fatal(err)
	}
	skipIfMarketDown(t, ctx)
	takeScreenshot(t, ctx, "portfolio", "calculated.png")

	rows, err := common.ElementCount(ctx, "#metrics-table tbody tr")
	if err != nil {
		t.Fatal(err)
	}
	if want := len(cfg.Portfolio.Symbols) + 1; rows != want {
		t.Errorf("metric rows = %d, want %d (instruments plus portfolio)", rows, want)
	}
	requireVisible(t, ctx, "#expected-table")
	requireText(t, ctx, "#expected-table tr.selected", "$")
	requireVisible(t, ctx, "#report-link")
}

func TestEstadisticaChartsOption(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	navigate(t, ctx, "/estadistica?symbols=SPY&calcular=1&opciones=1")
	skipIfMarketDown(t, ctx)

	requireVisible(t, ctx, "#charts")
	if err := chromedp.Run(ctx, chromedp.Sleep(chartsLoadWait)); err != nil {
		t.Fatal(err)
	}
	loaded, err := common.ImagesLoaded(ctx, "#charts")
	if err != nil {
		t.Fatal(err)
	}
	if !loaded {
		t.Error("chart images failed to load")
	}
	takeScreenshot(t, ctx, "portfolio", "charts.png")
}
