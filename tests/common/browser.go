package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

type BrowserConfig struct {
	Headless bool
	Timeout  time.Duration
}

func DefaultBrowserConfig() *BrowserConfig {
	cfg := LoadTestConfig()
	return &BrowserConfig{
		Headless: cfg.Browser.Headless,
		Timeout:  time.Duration(cfg.Browser.TimeoutSecs) * time.Second,
	}
}

// NewBrowserContext starts a Chrome instance. The returned cancel tears
// down the timeout, tab and allocator in that order.
func NewBrowserContext(cfg *BrowserConfig) (context.Context, context.CancelFunc) {
	if cfg == nil {
		cfg = DefaultBrowserConfig()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromeFlags(cfg.Headless)...)

	var cancels []context.CancelFunc
	ctx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	cancels = append(cancels, cancel)
	ctx, cancel = chromedp.NewContext(ctx)
	cancels = append(cancels, cancel)
	ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	cancels = append(cancels, cancel)

	return ctx, func() {
		for i := len(cancels) - 1; i >= 0; i-- {
			cancels[i]()
		}
	}
}

// chromeFlags suits containers and CI runners: no GPU, no sandbox and no
// reliance on a large /dev/shm.
func chromeFlags(headless bool) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	}
}

// JSErrorCollector records uncaught exceptions and console.error calls.
// Create it before navigating.
type JSErrorCollector struct {
	mu     sync.Mutex
	errors []string
}

func NewJSErrorCollector(ctx context.Context) *JSErrorCollector {
	c := &JSErrorCollector{}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		var msg string
		switch e := ev.(type) {
		case *runtime.EventExceptionThrown:
			msg = e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				msg = e.ExceptionDetails.Exception.Description
			}
			msg = "EXCEPTION: " + msg
		case *runtime.EventConsoleAPICalled:
			if e.Type != runtime.APITypeError {
				return
			}
			var parts []string
			for _, arg := range e.Args {
				if arg.Value != nil {
					parts = append(parts, string(arg.Value))
				} else if arg.Description != "" {
					parts = append(parts, arg.Description)
				}
			}
			if len(parts) == 0 {
				return
			}
			msg = "console.error: " + strings.Join(parts, " ")
		default:
			return
		}
		if strings.Contains(msg, "favicon") || strings.Contains(msg, "Content Security Policy") {
			return
		}
		c.mu.Lock()
		c.errors = append(c.errors, msg)
		c.mu.Unlock()
	})

	return c
}

func (c *JSErrorCollector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.errors))
	copy(out, c.errors)
	return out
}

func NavigateAndWait(ctx context.Context, url string, waitMs int) error {
	if waitMs == 0 {
		waitMs = 300
	}
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(time.Duration(waitMs)*time.Millisecond),
	)
}

// SelectInstruments ticks the given symbols on the Resumen form and submits it.
func SelectInstruments(ctx context.Context, symbols ...string) error {
	actions := []chromedp.Action{
		chromedp.Navigate(GetTestURL() + "/resumen"),
		chromedp.WaitVisible("#catalog-form", chromedp.ByQuery),
	}
	for _, sym := range symbols {
		actions = append(actions, chromedp.Click(
			fmt.Sprintf(`#catalog-form input[name="symbols"][value="%s"]`, sym), chromedp.ByQuery))
	}
	actions = append(actions,
		chromedp.Click(`#catalog-form button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible("#go-estadistica", chromedp.ByQuery),
	)
	return chromedp.Run(ctx, actions...)
}

// FillPortfolio sets weights and capital on the Estadística form.
// A zero capital leaves the default in place.
func FillPortfolio(ctx context.Context, weights map[string]int, capital int) error {
	actions := []chromedp.Action{chromedp.WaitVisible("#stats-form", chromedp.ByQuery)}
	for sym, w := range weights {
		sel := fmt.Sprintf(`#stats-form input[name="w_%s"]`, sym)
		actions = append(actions, chromedp.SetValue(sel, strconv.Itoa(w), chromedp.ByQuery))
	}
	if capital > 0 {
		actions = append(actions, chromedp.SetValue(`#stats-form input[name="capital"]`, strconv.Itoa(capital), chromedp.ByQuery))
	}
	return chromedp.Run(ctx, actions...)
}

// Calculate submits the Estadística form and waits for the result or the error box.
func Calculate(ctx context.Context) error {
	return chromedp.Run(ctx,
		chromedp.Click(`#stats-form button[name="calcular"]`, chromedp.ByQuery),
		chromedp.WaitVisible("#metrics-table, #validation-error", chromedp.ByQuery),
	)
}

// query evaluates a JS expression in which $el is the first match for
// selector and $all is every match.
func query[T any](ctx context.Context, selector, expr string) (T, error) {
	var out T
	js := fmt.Sprintf(`((sel) => {
		const $el = document.querySelector(sel);
		const $all = Array.from(document.querySelectorAll(sel));
		return %s;
	})('%s')`, expr, escJS(selector))
	err := chromedp.Run(ctx, chromedp.Evaluate(js, &out))
	return out, err
}

func IsVisible(ctx context.Context, selector string) (bool, error) {
	return query[bool](ctx, selector, `$el !== null && getComputedStyle($el).display !== 'none'`)
}

func Exists(ctx context.Context, selector string) (bool, error) {
	return query[bool](ctx, selector, `$el !== null`)
}

func ElementCount(ctx context.Context, selector string) (int, error) {
	return query[int](ctx, selector, `$all.length`)
}

// Text returns the trimmed text content of the first match, or "".
func Text(ctx context.Context, selector string) (string, error) {
	return query[string](ctx, selector, `$el ? $el.textContent.trim() : ''`)
}

// ImagesLoaded reports whether every img under selector decoded successfully.
func ImagesLoaded(ctx context.Context, selector string) (bool, error) {
	return query[bool](ctx, selector+" img",
		`$all.length > 0 && $all.every(i => i.complete && i.naturalWidth > 0)`)
}

func Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

type CheckResult struct {
	Name   string
	Pass   bool
	Detail string
}

// RunCheck evaluates one "selector|state" assertion. States are visible,
// exists, gone, text=X and count with a comparison such as count>=2.
func RunCheck(ctx context.Context, selector, state string) CheckResult {
	name := fmt.Sprintf("check(%s|%s)", selector, state)
	fail := func(err error) CheckResult { return CheckResult{Name: name, Detail: err.Error()} }

	switch {
	case state == "visible":
		v, err := IsVisible(ctx, selector)
		if err != nil {
			return fail(err)
		}
		return CheckResult{Name: name, Pass: v, Detail: fmt.Sprintf("visible=%v", v)}

	case state == "exists", state == "gone":
		v, err := Exists(ctx, selector)
		if err != nil {
			return fail(err)
		}
		want := state == "exists"
		return CheckResult{Name: name, Pass: v == want, Detail: fmt.Sprintf("exists=%v", v)}

	case strings.HasPrefix(state, "text="):
		actual, err := Text(ctx, selector)
		if err != nil {
			return fail(err)
		}
		return CheckResult{Name: name, Pass: strings.Contains(actual, state[5:]), Detail: "got: " + Truncate(actual, 60)}

	case strings.HasPrefix(state, "count"):
		n, err := ElementCount(ctx, selector)
		if err != nil {
			return fail(err)
		}
		return CheckResult{Name: name, Pass: compareCount(strings.TrimPrefix(state, "count"), n), Detail: fmt.Sprintf("count=%d", n)}
	}
	return CheckResult{Name: name, Detail: "unknown state: " + state}
}

func compareCount(expr string, actual int) bool {
	for _, op := range []string{">=", "<=", ">", "<", "="} {
		if !strings.HasPrefix(expr, op) {
			continue
		}
		n, err := strconv.Atoi(expr[len(op):])
		if err != nil {
			return false
		}
		switch op {
		case ">=":
			return actual >= n
		case "<=":
			return actual <= n
		case ">":
			return actual > n
		case "<":
			return actual < n
		default:
			return actual == n
		}
	}
	return false
}

// CheckRequest drives a page for the browser-check tool.
type CheckRequest struct {
	URL        string
	Viewport   string
	Screenshot string
	WaitMs     int
	Clicks     []string
	Checks     []string
}

type CheckResponse struct {
	Results []CheckResult
	Passed  int
	Failed  int
}

func (r *CheckResponse) add(res CheckResult) {
	r.Results = append(r.Results, res)
	if res.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

func RunChecks(ctx context.Context, req CheckRequest) (*CheckResponse, error) {
	if w, h, ok := parseViewport(req.Viewport); ok {
		if err := chromedp.Run(ctx, chromedp.EmulateViewport(w, h)); err != nil {
			return nil, fmt.Errorf("viewport %s: %w", req.Viewport, err)
		}
	}
	if err := NavigateAndWait(ctx, req.URL, req.WaitMs); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", req.URL, err)
	}

	resp := &CheckResponse{}
	for _, sel := range req.Clicks {
		res := CheckResult{Name: fmt.Sprintf("click(%s)", sel), Pass: true, Detail: "ok"}
		err := chromedp.Run(ctx,
			chromedp.Click(sel, chromedp.ByQuery),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
		if err != nil {
			res.Pass, res.Detail = false, err.Error()
		}
		resp.add(res)
	}

	for _, c := range req.Checks {
		sel, state, ok := strings.Cut(c, "|")
		if !ok {
			resp.add(CheckResult{Name: c, Detail: "bad format, need selector|state"})
			continue
		}
		resp.add(RunCheck(ctx, sel, state))
	}

	if req.Screenshot != "" {
		if err := Screenshot(ctx, req.Screenshot); err != nil {
			return resp, fmt.Errorf("screenshot failed: %w", err)
		}
	}
	return resp, nil
}

func parseViewport(s string) (int64, int64, bool) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return int64(w), int64(h), true
}

func escJS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
