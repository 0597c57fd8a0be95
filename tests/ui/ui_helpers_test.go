package tests

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/optimaxx-portal/tests/common"
)

// computeUnavailable marks the generic failure shown when the market data
// source cannot be reached from the container.
const computeUnavailable = "No fue posible completar el cálculo"

const chartsLoadWait = 2 * time.Second

func serverURL() string {
	return common.GetTestURL()
}

// newBrowser creates a headless Chrome context using the test config timeout.
func newBrowser(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	return common.NewBrowserContext(common.DefaultBrowserConfig())
}

func navigate(t *testing.T, ctx context.Context, path string) {
	t.Helper()
	if err := common.NavigateAndWait(ctx, serverURL()+path, 0); err != nil {
		t.Fatalf("navigate %s: %v", path, err)
	}
}

func takeScreenshot(t *testing.T, ctx context.Context, subdir, name string) {
	t.Helper()
	path := filepath.Join(common.GetScreenshotDir(subdir), name)
	if err := common.Screenshot(ctx, path); err != nil {
		t.Logf("screenshot %s failed: %v", name, err)
	}
}

func requireVisible(t *testing.T, ctx context.Context, selector string) {
	t.Helper()
	visible, err := common.IsVisible(ctx, selector)
	if err != nil {
		t.Fatal(err)
	}
	if !visible {
		t.Fatalf("%s not visible", selector)
	}
}

func requireText(t *testing.T, ctx context.Context, selector, want string) string {
	t.Helper()
	got, err := common.Text(ctx, selector)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, want) {
		t.Fatalf("%s text = %q, want it to contain %q", selector, got, want)
	}
	return got
}

// skipIfMarketDown skips tests that need live prices when the calculation
// failed for reasons other than validation.
func skipIfMarketDown(t *testing.T, ctx context.Context) {
	t.Helper()
	msg, err := common.Text(ctx, "#validation-error")
	if err == nil && strings.Contains(msg, computeUnavailable) {
		t.Skip("market data unavailable: " + msg)
	}
}
