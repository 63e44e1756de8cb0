// Package serve implements the serve command.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cofina/leads"
	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/server"
	"github.com/cofina/leads/internal/watch"
	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/session"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the edit session over HTTP",
		Long: `Start the REST API over the loaded workbook.

Features:
  - Category views with search (/api/v1/data, /api/v1/categories/{name})
  - Edit session: stage, commit, cancel, undo, row operations
  - WebSocket (/api/v1/updates/ws) and SSE (/api/v1/updates/stream) change events
  - Optional API key authentication and CORS
  - Optional reload when category CSV files change on disk`,
		Example: `  leads serve
  leads serve --port 3000 --watch
  leads serve --api-key s3cret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.ServerConfig()
			watching := app.Watch()
			applyFlags(cmd, &cfg, &watching)
			return run(cmd.Context(), app, cfg, watching)
		},
	}

	def := server.DefaultConfig()
	cmd.Flags().IntP("port", "p", def.Port, "Server port")
	cmd.Flags().String("host", def.Host, "Bind address")
	cmd.Flags().Bool("cors", def.CORSEnabled, "Enable CORS")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated)")
	cmd.Flags().String("api-key", "", "Require this API key on every request")
	cmd.Flags().Duration("cache-ttl", def.CacheTTL, "Cache TTL for read endpoints")
	cmd.Flags().Bool("watch", false, "Reload when category files change")
	return cmd
}

// applyFlags overrides configured values with flags the user set.
func applyFlags(cmd *cobra.Command, cfg *server.Config, watching *bool) {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port, _ = f.GetInt("port")
	}
	if f.Changed("host") {
		cfg.Host, _ = f.GetString("host")
	}
	if f.Changed("cors") {
		cfg.CORSEnabled, _ = f.GetBool("cors")
	}
	if f.Changed("cors-origins") {
		cfg.CORSOrigins, _ = f.GetStringSlice("cors-origins")
	}
	if f.Changed("api-key") {
		cfg.APIKey, _ = f.GetString("api-key")
		cfg.AuthEnabled = cfg.APIKey != ""
	}
	if f.Changed("cache-ttl") {
		cfg.CacheTTL, _ = f.GetDuration("cache-ttl")
	}
	if f.Changed("watch") {
		*watching, _ = f.GetBool("watch")
	}
}

func run(ctx context.Context, app application.Application, cfg server.Config, watching bool) error {
	logger := app.Logger()
	l, err := app.Leads(ctx)
	if err != nil {
		return err
	}

	srv, err := server.New(l, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Start()

	if watching {
		w, err := startWatcher(ctx, app, logger, reloadUnlessDirty(l, logger))
		if err != nil {
			_ = srv.Shutdown(ctx)
			return err
		}
		defer func() { _ = w.Close() }()
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Bool("watch", watching).
		Msg("Starting API server")

	return serve(ctx, srv.HTTPServer(), srv, logger)
}

// reloadUnlessDirty reloads l on file changes, but skips the reload while
// the session has staged edits. A later change, or POST /reload, picks the
// files up once the edits are committed or cancelled.
func reloadUnlessDirty(l leads.Leads, logger *zerolog.Logger) watch.ReloadFunc {
	return func(ctx context.Context, files []string) error {
		var dirty bool
		_ = l.View(func(s *session.Session) error {
			dirty = s.Dirty()
			return nil
		})
		if dirty {
			logger.Warn().Strs("files", files).Msg("Category files changed; reload skipped while edits are pending")
			return nil
		}
		_, err := l.Reload(ctx)
		return err
	}
}

func startWatcher(ctx context.Context, app application.Application, logger *zerolog.Logger, reload watch.ReloadFunc) (*watch.Watcher, error) {
	src := app.CSVSource()
	var files []string
	for _, name := range src.Categories() {
		if p, err := src.Path(name); err == nil {
			files = append(files, filepath.Base(p))
		}
	}
	w, err := watch.New(src.Dir(), files, reload, watch.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	return w, nil
}

// serve runs httpSrv until ctx is cancelled or the listener fails, then
// drains connections and stops background services.
func serve(ctx context.Context, httpSrv *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-serverErr:
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Background services did not stop in time")
	}

	logger.Info().Dur("uptime", time.Since(srv.StartTime())).Msg("Server stopped")
	return runErr
}
