// Package server provides the HTTP API over a leads workbook.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cofina/leads"
	"github.com/cofina/leads/internal/server/cache"
	"github.com/cofina/leads/internal/server/events"
	"github.com/cofina/leads/internal/server/events/adapters"
	"github.com/cofina/leads/internal/server/sse"
	ws "github.com/cofina/leads/internal/server/websocket"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/session"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	leads          leads.Leads
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	brokerDone     chan struct{}
	startTime      time.Time
}

// New creates a server over l. A nil logger uses the default logger.
func New(l leads.Leads, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	if cfg.EventJournal <= 0 {
		cfg.EventJournal = events.DefaultJournalSize
	}

	broker := events.NewBroker(logger, events.WithJournalSize(cfg.EventJournal))
	wsHub := ws.NewHub(logger, ws.WithReplay(adapters.WebSocketReplay(broker)))
	sseBroadcaster := sse.NewBroadcaster(logger, sse.WithReplay(adapters.SSEReplay(broker)))
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		leads:          l,
		cache:          cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:     logger,
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		brokerDone: make(chan struct{}),
		startTime:  time.Now(),
	}

	s.connectHooks()
	logger.Debug().Msg("Server instance created")
	return s, nil
}

// connectHooks publishes commits and reloads to the broker and drops
// cached views they invalidate.
func (s *Server) connectHooks() {
	s.leads.OnCommit(func(res session.CommitResult) {
		s.cache.Clear()
		s.broker.Publish(events.SessionCommitted, map[string]any{
			"cells":       res.Cells,
			"categories":  res.Categories,
			"toggles":     res.Toggles,
			"resorted":    res.Resorted,
			"unpersisted": res.Unpersisted,
			"warnings":    res.WarningMessages(),
		})
		s.logger.Debug().Int("cells", res.Cells).Msg("Commit event published")
	})

	s.leads.OnReload(func(report *leads.LoadReport) {
		s.cache.Clear()
		s.broker.Publish(events.WorkbookReloaded, report)
		s.logger.Debug().Str("session_id", report.SessionID).Msg("Reload event published")
	})
}

// Start starts event delivery.
func (s *Server) Start() {
	go func() {
		defer close(s.brokerDone)
		s.broker.Run(s.ctx)
	}()
	s.logger.Debug().Msg("Event delivery started")
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server for the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Shutdown disconnects realtime clients and waits for event delivery to
// stop. It must only be called after Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down realtime services")
	s.wsHub.Close()
	s.sseBroadcaster.Close()
	s.cancel()

	select {
	case <-s.brokerDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cache returns the response cache.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns when the server was created.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
