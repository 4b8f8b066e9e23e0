package fetcher

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// jsMarkers are phrases that show up on pages which refuse to render
// without JavaScript.
var jsMarkers = []string{
	"enable javascript",
	"javascript is required",
	"javascript is disabled",
	"please turn on javascript",
	"requires javascript",
	"captcha-delivery.com",
	"just a moment...",
}

// smallPage is the size under which a page is checked for JavaScript markers.
const smallPage = 8 << 10

// NeedsJavaScript reports whether markup looks like a shell that only
// renders in a real browser.
func NeedsJavaScript(markup string) bool {
	if len(markup) > smallPage {
		return false
	}
	lower := strings.ToLower(markup)
	for _, m := range jsMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Fallback fetches with Primary and retries with Secondary when the page
// needs JavaScript. If the secondary fetch fails, the primary result stands.
type Fallback struct {
	Primary   Fetcher
	Secondary Fetcher
	Logger    *zap.Logger
}

// Fetch implements Fetcher.
func (f *Fallback) Fetch(ctx context.Context, url string) (*Result, error) {
	res, err := f.Primary.Fetch(ctx, url)
	if err != nil || f.Secondary == nil || !NeedsJavaScript(res.Markup) {
		return res, err
	}

	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("page needs javascript, retrying with browser", zap.String("url", url))

	alt, altErr := f.Secondary.Fetch(ctx, url)
	if altErr != nil {
		logger.Warn("browser fetch failed", zap.String("url", url), zap.Error(altErr))
		return res, nil
	}
	if alt.Header == nil {
		alt.Header = res.Header
	}
	return alt, nil
}
