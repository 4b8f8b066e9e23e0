package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Browser fetches pages with headless Chrome, for sites that build their
// content with JavaScript. It starts a fresh browser per fetch.
type Browser struct {
	opts   Options
	logger *zap.Logger
}

// NewBrowser creates a Chrome-backed fetcher. logger may be nil.
func NewBrowser(opts Options, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{opts: opts.withDefaults(), logger: logger}
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-service-autorun", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.Flag("headless", "new"),
		chromedp.UserAgent(b.opts.UserAgent),
		chromedp.WindowSize(1280, 1024),
	}
	if b.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.opts.ChromePath))
	}
	return allocOpts
}

// Fetch navigates to url, waits for the body and returns the rendered markup.
func (b *Browser) Fetch(ctx context.Context, url string) (*Result, error) {
	start := time.Now()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer allocCancel()

	// Browser fetches get extra time over plain HTTP.
	ctx, cancel := context.WithTimeout(allocCtx, b.opts.Timeout+15*time.Second)
	defer cancel()

	ctx, cancel = chromedp.NewContext(ctx)
	defer cancel()

	var markup, finalURL string
	err := chromedp.Run(ctx,
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		})),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Give client-side rendering a moment to settle.
		chromedp.Sleep(time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var title string
			if err := chromedp.Title(&title).Do(ctx); err != nil {
				return nil
			}
			if strings.EqualFold(title, "Just a moment...") {
				return chromedp.Sleep(5 * time.Second).Do(ctx)
			}
			return nil
		}),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("browser fetch: %w", err)}
	}

	b.logger.Debug("fetched page with browser",
		zap.String("url", finalURL),
		zap.Int("bytes", len(markup)),
		zap.Duration("took", time.Since(start)),
	)

	return &Result{
		Markup:      markup,
		URL:         finalURL,
		Status:      200,
		ContentType: "text/html; charset=utf-8",
		Charset:     "utf-8",
		UsedBrowser: true,
		FetchTime:   time.Since(start),
	}, nil
}
