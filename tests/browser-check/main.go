// browser-check loads one portal page in headless Chrome and evaluates
// selector assertions against it.
//
// Usage:
//
//	go run ./tests/browser-check -url http://localhost:4251/resumen -check '#catalog-form|visible'
//	go run ./tests/browser-check -url 'http://localhost:4251/estadistica?symbols=SPY,QQQ' -check '#stats-form input[type=number]|count>=3'
//	go run ./tests/browser-check -url 'http://localhost:4251/estadistica?symbols=SPY&calcular=1' -check '#metrics-table|visible' -screenshot /tmp/stats.png
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bobmcallan/optimaxx-portal/tests/common"
)

// multiFlag collects repeated -check and -click flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ", ") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	var (
		req     common.CheckRequest
		checks  multiFlag
		clicks  multiFlag
		timeout time.Duration
	)

	flag.StringVar(&req.URL, "url", "", "URL to test (required)")
	flag.StringVar(&req.Viewport, "viewport", "", "Viewport as WxH, e.g. 375x812")
	flag.StringVar(&req.Screenshot, "screenshot", "", "Save screenshot to path")
	flag.IntVar(&req.WaitMs, "wait", 500, "Wait ms after load")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall browser timeout")
	flag.Var(&checks, "check", "selector|state  (state: visible, exists, gone, text=X, count>N)")
	flag.Var(&clicks, "click", "CSS selector to click (in order, before -check)")
	flag.Parse()

	if req.URL == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -url is required")
		flag.Usage()
		os.Exit(2)
	}
	req.Checks = checks
	req.Clicks = clicks

	ctx, cancel := common.NewBrowserContext(&common.BrowserConfig{Headless: true, Timeout: timeout})
	defer cancel()

	jsErrs := common.NewJSErrorCollector(ctx)

	resp, err := common.RunChecks(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		if resp == nil {
			os.Exit(1)
		}
	}

	for _, r := range resp.Results {
		status := "PASS"
		if !r.Pass {
			status = "FAIL"
		}
		fmt.Printf("%s  %s  %s\n", status, r.Name, r.Detail)
	}

	errs := jsErrs.Errors()
	for _, e := range errs {
		fmt.Printf("FAIL  js  %s\n", common.Truncate(e, 120))
	}
	if req.Screenshot != "" && err == nil {
		fmt.Printf("screenshot: %s\n", req.Screenshot)
	}

	fmt.Printf("\n%d passed, %d failed, %d js errors\n", resp.Passed, resp.Failed, len(errs))
	if resp.Failed > 0 || len(errs) > 0 || err != nil {
		os.Exit(1)
	}
}
