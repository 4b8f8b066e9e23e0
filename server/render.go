package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"webgu/document"
	"webgu/fetcher"
	"webgu/pipeline"
	"webgu/security"
)

const (
	defaultTextWidth = 80
	maxTextWidth     = 400
)

type errorResponse struct {
	Error string `json:"error"`
	URL   string `json:"url,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// navigate runs one navigation for an API request. On failure it writes the
// error response and returns nil.
func (s *Server) navigate(w http.ResponseWriter, r *http.Request) *pipeline.Page {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
		return nil
	}

	var opts []pipeline.NavigateOption
	if reload, _ := strconv.ParseBool(r.URL.Query().Get("reload")); reload {
		opts = append(opts, pipeline.WithReload())
	}

	page, err := s.newPipeline(pipeline.NopShell{}).Navigate(r.Context(), target, opts...)
	if err != nil {
		s.writeJSON(w, errorStatus(err), errorResponse{Error: pipeline.UserMessage(target, err), URL: target})
		return nil
	}
	return page
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidURL), errors.Is(err, security.ErrScheme):
		return http.StatusBadRequest
	case errors.Is(err, security.ErrBlocked), errors.Is(err, security.ErrInsecure):
		return http.StatusForbidden
	}
	var fe *fetcher.FetchError
	if errors.As(err, &fe) && fe.Timeout() {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	page := s.navigate(w, r)
	if page == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	width := defaultTextWidth
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 20 || n > maxTextWidth {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "width must be between 20 and 400"})
			return
		}
		width = n
	}

	page := s.navigate(w, r)
	if page == nil {
		return
	}

	painter := document.NewPainter(width, s.theme)
	canvas := painter.Paint(page.Title, page.Nodes())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(canvas.PlainText())); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}
