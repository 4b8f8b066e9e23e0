package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgu/cache"
	"webgu/fetcher"
	"webgu/pipeline"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(ctx context.Context, u string) (*fetcher.Result, error) {
	markup, ok := m[u]
	if !ok {
		return nil, &fetcher.FetchError{URL: u, Status: http.StatusNotFound}
	}
	return &fetcher.Result{Markup: markup, URL: u, Status: http.StatusOK}, nil
}

var pages = mapFetcher{
	"https://example.com":       `<title>Example</title><h1>Welcome</h1><p>Hello <a href="/about">about us</a></p>`,
	"https://example.com/about": `<title>About</title><p>We make things.</p>`,
}

func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := pipeline.NewMetrics(reg)
	c := cache.NewMemory(10)
	factory := func(sh pipeline.Shell) *pipeline.Pipeline {
		return pipeline.New(pages, sh,
			pipeline.WithBlockingFetch(),
			pipeline.WithCache(c),
			pipeline.WithMetrics(metrics),
		)
	}
	srv := httptest.NewServer(New(factory, WithGatherer(reg)).Handler())
	t.Cleanup(srv.Close)
	return srv, reg
}

func get(t *testing.T, rawURL string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestRender(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/render?url="+url.QueryEscape("https://example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var page struct {
		URL    string `json:"url"`
		Title  string `json:"title"`
		Render struct {
			Nodes []struct {
				Kind     string `json:"kind"`
				Category string `json:"category"`
				Text     string `json:"text"`
				Link     *struct {
					URL string `json:"url"`
				} `json:"link"`
			} `json:"nodes"`
		} `json:"render"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, "https://example.com", page.URL)
	assert.Equal(t, "Example", page.Title)

	var cats []string
	for _, n := range page.Render.Nodes {
		cats = append(cats, n.Category)
	}
	assert.Equal(t, []string{"heading", "heading", "paragraph", "link"}, cats)
	last := page.Render.Nodes[len(page.Render.Nodes)-1]
	require.NotNil(t, last.Link)
	assert.Equal(t, "https://example.com/about", last.Link.URL)
}

func TestRenderErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name   string
		query  string
		status int
		msg    string
	}{
		{"missing url", "", http.StatusBadRequest, "missing url"},
		{"not found", "?url=" + url.QueryEscape("https://example.com/nope"), http.StatusBadGateway, "page not found"},
		{"blocked", "?url=" + url.QueryEscape("https://malware.example.com"), http.StatusForbidden, "blocked"},
		{"bad scheme", "?url=" + url.QueryEscape("ftp://example.com"), http.StatusBadRequest, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/api/render"+tt.query)
			assert.Equal(t, tt.status, resp.StatusCode)
			var er errorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &er))
			assert.Contains(t, er.Error, tt.msg)
		})
	}
}

func TestText(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/text?width=60&url="+url.QueryEscape("https://example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "Example")
	assert.Contains(t, body, "WELCOME")
	assert.Contains(t, body, "about us")
	assert.NotContains(t, body, "\x1b[")

	resp, _ = get(t, srv.URL+"/api/text?width=5&url="+url.QueryEscape("https://example.com"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	get(t, srv.URL+"/api/render?url="+url.QueryEscape("https://example.com"))

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `webgu_navigations_total{result="done"} 1`)
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var ev Event
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == typ {
			return ev
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	srv, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := readUntil(t, conn, "tabs")
	require.Len(t, hello.Tabs, 1)
	tabID := hello.Active

	require.NoError(t, conn.WriteJSON(Command{Op: "ping"}))
	readUntil(t, conn, "pong")

	require.NoError(t, conn.WriteJSON(Command{Op: "navigate", URL: "https://example.com"}))
	ev := readUntil(t, conn, "rendered")
	assert.Equal(t, tabID, ev.Tab)
	require.NotNil(t, ev.Page)
	assert.Equal(t, "Example", ev.Page.Title)

	status := readUntil(t, conn, "status")
	assert.Equal(t, "Done", status.Message)
	tabs := readUntil(t, conn, "tabs")
	assert.Equal(t, "https://example.com", tabs.Tabs[0].URL)

	require.NoError(t, conn.WriteJSON(Command{Op: "navigate", URL: "https://example.com/about"}))
	ev = readUntil(t, conn, "rendered")
	assert.Equal(t, "About", ev.Page.Title)
	tabs = readUntil(t, conn, "tabs")
	assert.True(t, tabs.Tabs[0].CanBack)

	require.NoError(t, conn.WriteJSON(Command{Op: "back"}))
	ev = readUntil(t, conn, "rendered")
	assert.Equal(t, "https://example.com", ev.Page.URL)
	assert.True(t, ev.Page.FromCache)

	require.NoError(t, conn.WriteJSON(Command{Op: "navigate", URL: "https://example.com/missing"}))
	errEv := readUntil(t, conn, "error")
	assert.Equal(t, "Could not load https://example.com/missing: page not found", errEv.Message)

	require.NoError(t, conn.WriteJSON(Command{Op: "close_tab", Tab: tabID}))
	errEv = readUntil(t, conn, "error")
	assert.Equal(t, "cannot close the last tab", errEv.Message)

	require.NoError(t, conn.WriteJSON(Command{Op: "new_tab"}))
	tabs = readUntil(t, conn, "tabs")
	assert.Len(t, tabs.Tabs, 2)
	assert.NotEqual(t, tabID, tabs.Active)

	require.NoError(t, conn.WriteJSON(Command{Op: "frobnicate"}))
	errEv = readUntil(t, conn, "error")
	assert.Contains(t, errEv.Message, "unknown op")
}
