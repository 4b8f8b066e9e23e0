package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"webgu/browser"
	"webgu/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The shell is a local tool; any page may drive it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Command is a message from a WebSocket client. Tab defaults to the active tab.
type Command struct {
	Op  string `json:"op"` // navigate, back, forward, reload, new_tab, close_tab, switch_tab, tabs, ping
	Tab string `json:"tab,omitempty"`
	URL string `json:"url,omitempty"`
}

// Event is a message to a WebSocket client.
type Event struct {
	Type     string         `json:"type"` // progress, status, rendered, error, tabs, pong
	Tab      string         `json:"tab,omitempty"`
	Progress float64        `json:"progress,omitempty"`
	Message  string         `json:"message,omitempty"`
	Page     *pipeline.Page `json:"page,omitempty"`
	Tabs     []TabInfo      `json:"tabs,omitempty"`
	Active   string         `json:"active,omitempty"`
}

// TabInfo describes an open tab.
type TabInfo struct {
	ID         string `json:"id"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	State      string `json:"state"`
	CanBack    bool   `json:"can_back"`
	CanForward bool   `json:"can_forward"`
}

// wsConn serialises writes; gorilla allows one writer at a time.
type wsConn struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	logger *zap.Logger
}

func (c *wsConn) send(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(ev); err != nil {
		c.logger.Debug("websocket write failed", zap.Error(err))
	}
}

// wsShell forwards one tab's pipeline events to the client.
type wsShell struct {
	conn *wsConn
	tab  string
}

func (s *wsShell) OnProgress(f float64) {
	s.conn.send(Event{Type: "progress", Tab: s.tab, Progress: f})
}

func (s *wsShell) OnStatus(msg string) {
	s.conn.send(Event{Type: "status", Tab: s.tab, Message: msg})
}

func (s *wsShell) OnRendered(p *pipeline.Page) {
	s.conn.send(Event{Type: "rendered", Tab: s.tab, Page: p})
}

func (s *wsShell) OnError(msg string) {
	s.conn.send(Event{Type: "error", Tab: s.tab, Message: msg})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &wsConn{conn: conn, logger: s.logger}
	b := browser.New(s.newPipeline,
		browser.WithLogger(s.logger),
		browser.WithShell(func(id string) pipeline.Shell { return &wsShell{conn: c, tab: id} }),
	)

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	c.send(tabsEvent(b))

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		s.dispatch(ctx, &wg, b, c, cmd)
	}
}

func (s *Server) dispatch(ctx context.Context, wg *sync.WaitGroup, b *browser.Browser, c *wsConn, cmd Command) {
	switch cmd.Op {
	case "ping":
		c.send(Event{Type: "pong"})
		return
	case "tabs":
		c.send(tabsEvent(b))
		return
	case "new_tab":
		b.NewTab()
		c.send(tabsEvent(b))
		return
	case "close_tab":
		if err := b.CloseTab(cmd.Tab); err != nil {
			c.send(Event{Type: "error", Tab: cmd.Tab, Message: err.Error()})
			return
		}
		c.send(tabsEvent(b))
		return
	case "switch_tab":
		if err := b.Switch(cmd.Tab); err != nil {
			c.send(Event{Type: "error", Tab: cmd.Tab, Message: err.Error()})
			return
		}
		c.send(tabsEvent(b))
		return
	}

	tab := b.Active()
	if cmd.Tab != "" {
		t, err := b.Tab(cmd.Tab)
		if err != nil {
			c.send(Event{Type: "error", Tab: cmd.Tab, Message: err.Error()})
			return
		}
		tab = t
	}

	var run func(context.Context) (*pipeline.Page, error)
	switch cmd.Op {
	case "navigate":
		run = func(ctx context.Context) (*pipeline.Page, error) { return tab.Navigate(ctx, cmd.URL) }
	case "back":
		run = tab.Back
	case "forward":
		run = tab.Forward
	case "reload":
		run = tab.Reload
	default:
		c.send(Event{Type: "error", Message: "unknown op " + cmd.Op})
		return
	}

	// Navigations run in the background so that a later command can
	// supersede them. The pipeline reports failures through the shell.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := run(ctx); err != nil {
			if errors.Is(err, browser.ErrNoHistory) {
				c.send(Event{Type: "error", Tab: tab.ID, Message: err.Error()})
			}
			return
		}
		c.send(tabsEvent(b))
	}()
}

func tabsEvent(b *browser.Browser) Event {
	ev := Event{Type: "tabs", Active: b.Active().ID}
	for _, t := range b.Tabs() {
		info := TabInfo{
			ID:         t.ID,
			URL:        t.URL(),
			State:      t.State().String(),
			CanBack:    t.CanGoBack(),
			CanForward: t.CanGoForward(),
		}
		if p := t.Page(); p != nil {
			info.Title = p.Title
		}
		ev.Tabs = append(ev.Tabs, info)
	}
	return ev
}
