package fetcher

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	res   *Result
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	s.calls++
	return s.res, s.err
}

func TestNeedsJavaScript(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{"noscript notice", "<noscript>Please enable JavaScript to continue</noscript>", true},
		{"challenge", "<title>Just a moment...</title>", true},
		{"ordinary page", "<h1>Hello</h1><p>Plain content</p>", false},
		{"large page mentioning javascript", "<p>" + strings.Repeat("text ", 4000) + "enable javascript</p>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsJavaScript(tt.markup))
		})
	}
}

func TestFallbackUsesSecondaryForScriptPages(t *testing.T) {
	primary := &stubFetcher{res: &Result{Markup: "<p>You need to enable JavaScript</p>", Header: http.Header{"X-Frame-Options": {"DENY"}}}}
	secondary := &stubFetcher{res: &Result{Markup: "<p>Rendered</p>", UsedBrowser: true}}

	f := &Fallback{Primary: primary, Secondary: secondary}
	res, err := f.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<p>Rendered</p>", res.Markup)
	assert.True(t, res.UsedBrowser)
	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackKeepsPrimaryResult(t *testing.T) {
	primary := &stubFetcher{res: &Result{Markup: "<p>Fine as is</p>"}}
	secondary := &stubFetcher{res: &Result{Markup: "<p>unused</p>"}}

	f := &Fallback{Primary: primary, Secondary: secondary}
	res, err := f.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<p>Fine as is</p>", res.Markup)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackSecondaryFailure(t *testing.T) {
	primary := &stubFetcher{res: &Result{Markup: "<p>Please enable JavaScript</p>"}}
	secondary := &stubFetcher{err: errors.New("no chrome")}

	f := &Fallback{Primary: primary, Secondary: secondary}
	res, err := f.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<p>Please enable JavaScript</p>", res.Markup)
}

func TestFallbackPrimaryError(t *testing.T) {
	boom := errors.New("boom")
	f := &Fallback{Primary: &stubFetcher{err: boom}, Secondary: &stubFetcher{}}
	_, err := f.Fetch(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, boom)
}
