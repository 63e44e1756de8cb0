package serve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads/internal/cmd/application"
	"github.com/cofina/leads/internal/server"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/session"
)

func TestApplyFlagsOnlyChanged(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9090", "--api-key", "k", "--watch", "--cache-ttl", "1m"}))

	cfg := server.DefaultConfig()
	cfg.Host = "0.0.0.0"
	watching := false
	applyFlags(cmd, &cfg, &watching)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host, "unset flags keep configured values")
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.True(t, watching)
}

func TestStartWatcherWatchesCategoryFiles(t *testing.T) {
	l, src := application.NewTestLeads(t)
	mock := application.NewTestMock(l, src, "json")
	noop := func(context.Context, []string) error { return nil }

	w, err := startWatcher(t.Context(), mock, mock.Logger(), noop)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	assert.Equal(t, 0, w.Reloads())
}

func TestReloadUnlessDirty(t *testing.T) {
	l, _ := application.NewTestLeads(t)
	logger := logging.NewNopLogger()
	reload := reloadUnlessDirty(l, logger)
	first := l.Report().SessionID

	require.NoError(t, l.Update(func(s *session.Session) error {
		return s.StageEdit("Series A", 0, 2, "Acme Staged")
	}))
	require.NoError(t, reload(t.Context(), []string{"series_a.csv"}))
	assert.Equal(t, first, l.Report().SessionID, "pending edits keep the session")

	require.NoError(t, l.Update(func(s *session.Session) error {
		s.Cancel()
		return nil
	}))
	require.NoError(t, reload(t.Context(), []string{"series_a.csv"}))
	assert.NotEqual(t, first, l.Report().SessionID)
}
