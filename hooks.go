package leads

import (
	"sync"

	"github.com/cofina/leads/pkg/session"
)

// ReloadHook is called after a load completes.
type ReloadHook func(report *LoadReport)

// hooks manages event callbacks for workbook changes.
type hooks struct {
	mu       sync.RWMutex
	onReload []ReloadHook
	onCommit []session.CommitHook
}

// newHooks creates a new hooks instance.
func newHooks() *hooks {
	return &hooks{}
}

// OnReload registers a callback for completed loads.
func (h *hooks) OnReload(fn ReloadHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = append(h.onReload, fn)
}

// OnCommit registers a callback carried over to every new session.
func (h *hooks) OnCommit(fn session.CommitHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCommit = append(h.onCommit, fn)
}

// attach registers the commit hooks on s.
func (h *hooks) attach(s *session.Session) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onCommit {
		s.OnCommit(fn)
	}
}

// triggerReload calls every reload hook.
func (h *hooks) triggerReload(report *LoadReport) {
	h.mu.RLock()
	fns := append([]ReloadHook(nil), h.onReload...)
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(report)
	}
}
