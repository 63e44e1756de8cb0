package server

import (
	"net/http"
	"strings"

	"github.com/cofina/leads/internal/server/handlers"
	"github.com/cofina/leads/internal/server/middleware"
	"github.com/cofina/leads/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(
		s.leads,
		s.cache,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
	)
	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// only restricts a handler to one method.
func only(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		fn(w, r)
	}
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/stats", only(http.MethodGet, h.HandleStats))

	// Workbook
	mux.HandleFunc(prefix+"/data", only(http.MethodGet, h.HandleData))
	mux.HandleFunc(prefix+"/categories/", only(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		name := extractPathParam(r.URL.Path, prefix+"/categories/")
		if name == "" {
			response.BadRequest(w, "Category name required", "")
			return
		}
		h.HandleCategory(w, r, name)
	}))
	mux.HandleFunc(prefix+"/save", only(http.MethodPost, h.HandleSave))
	mux.HandleFunc(prefix+"/reload", only(http.MethodPost, h.HandleReload))
	mux.HandleFunc(prefix+"/mark", only(http.MethodPost, h.HandleMark))

	// Session
	mux.HandleFunc(prefix+"/session", only(http.MethodGet, h.HandleSession))
	mux.HandleFunc(prefix+"/session/edits", only(http.MethodPost, h.HandleEdits))
	mux.HandleFunc(prefix+"/session/commit", only(http.MethodPost, h.HandleCommit))
	mux.HandleFunc(prefix+"/session/cancel", only(http.MethodPost, h.HandleCancel))
	mux.HandleFunc(prefix+"/session/mode", only(http.MethodPost, h.HandleMode))
	mux.HandleFunc(prefix+"/session/select", only(http.MethodPost, h.HandleSelect))
	mux.HandleFunc(prefix+"/session/undo", only(http.MethodPost, h.HandleUndo))
	mux.HandleFunc(prefix+"/session/rows", only(http.MethodPost, h.HandleAddRow))
	mux.HandleFunc(prefix+"/session/rows/delete", only(http.MethodPost, h.HandleDeleteRows))
	mux.HandleFunc(prefix+"/session/rows/copy", only(http.MethodPost, h.HandleCopyRows))
	mux.HandleFunc(prefix+"/session/rows/paste", only(http.MethodPost, h.HandlePasteRows))

	// Realtime
	mux.HandleFunc(prefix+"/events", only(http.MethodGet, h.HandleEvents))
	mux.HandleFunc(prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc(prefix+"/updates/stream", h.HandleSSE)
}

// applyMiddleware wraps handler with the middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		if cfg.AuthHeader != "" {
			authConfig.HeaderName = cfg.AuthHeader
		}
		authConfig.PublicPaths = []string{"/health", cfg.PathPrefix + "/health"}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	)(handler)
}

// extractPathParam returns the first path segment after prefix. Segments
// are already unescaped by net/http.
func extractPathParam(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	first, _, _ := strings.Cut(trimmed, "/")
	return first
}
