package handlers

import (
	"net/http"

	"github.com/cofina/leads/internal/server/cache"
	"github.com/cofina/leads/internal/server/response"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/session"
)

// SessionView summarizes the edit session.
type SessionView struct {
	ID         string                            `json:"id"`
	State      session.State                     `json:"state"`
	EditMode   bool                              `json:"edit_mode"`
	Active     string                            `json:"active_category"`
	Selected   []int                             `json:"selected"`
	Pending    map[string]map[int]map[int]string `json:"pending"`
	History    []session.Entry                   `json:"history"`
	Categories []string                          `json:"categories"`
}

func newSessionView(s *session.Session) SessionView {
	return SessionView{
		ID:         s.ID(),
		State:      s.State(),
		EditMode:   s.EditMode(),
		Active:     s.ActiveCategory(),
		Selected:   s.Selected(),
		Pending:    s.Pending(),
		History:    s.History(),
		Categories: s.Workbook().Names(),
	}
}

// HandleSession handles GET /api/v1/session.
func (h *Handlers) HandleSession(w http.ResponseWriter, _ *http.Request) {
	v, err := h.cache.Remember(cache.KeySession, func() (any, error) {
		var view SessionView
		err := h.leads.View(func(s *session.Session) error {
			view = newSessionView(s)
			return nil
		})
		return view, err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, v)
}

// Edit is one staged cell value.
type Edit struct {
	Category string `json:"category"`
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Value    string `json:"value"`
}

type editsRequest struct {
	Edits []Edit `json:"edits"`
}

// HandleEdits handles POST /api/v1/session/edits. Edits are staged in
// order; the first invalid one stops the batch and earlier ones stay staged.
func (h *Handlers) HandleEdits(w http.ResponseWriter, r *http.Request) {
	var req editsRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if len(req.Edits) == 0 {
		response.BadRequest(w, "no edits given", "")
		return
	}

	staged := 0
	var view SessionView
	err := h.leads.Update(func(s *session.Session) error {
		for _, e := range req.Edits {
			if err := s.StageEdit(e.Category, e.Row, e.Column, e.Value); err != nil {
				return err
			}
			staged++
		}
		view = newSessionView(s)
		return nil
	})
	if staged > 0 {
		h.changed("edits", map[string]any{"staged": staged})
	}
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, view)
}

// commitResponse adds string warnings to a commit result.
type commitResponse struct {
	*session.CommitResult
	Warnings []string `json:"warnings,omitempty"`
}

// HandleCommit handles POST /api/v1/session/commit. Cache invalidation and
// event publishing happen in the commit hook.
func (h *Handlers) HandleCommit(w http.ResponseWriter, r *http.Request) {
	var res *session.CommitResult
	err := h.leads.Update(func(s *session.Session) error {
		var err error
		res, err = s.Commit(r.Context())
		return err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, commitResponse{CommitResult: res, Warnings: res.WarningMessages()})
}

// HandleCancel handles POST /api/v1/session/cancel.
func (h *Handlers) HandleCancel(w http.ResponseWriter, _ *http.Request) {
	var view SessionView
	_ = h.leads.Update(func(s *session.Session) error {
		s.Cancel()
		view = newSessionView(s)
		return nil
	})
	h.changed("cancel", nil)
	response.OK(w, view)
}

type modeRequest struct {
	EditMode *bool `json:"edit_mode"`
}

// HandleMode handles POST /api/v1/session/mode.
func (h *Handlers) HandleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if req.EditMode == nil {
		response.ErrorFromType(w, errors.NewValidationError("edit_mode", nil, "edit_mode is required"))
		return
	}
	var view SessionView
	_ = h.leads.Update(func(s *session.Session) error {
		s.SetEditMode(*req.EditMode)
		view = newSessionView(s)
		return nil
	})
	h.changed("mode", map[string]any{"edit_mode": *req.EditMode})
	response.OK(w, view)
}

type selectRequest struct {
	Category string          `json:"category"`
	Row      int             `json:"row"`
	Gesture  session.Gesture `json:"gesture"`
}

// HandleSelect handles POST /api/v1/session/select. A category switches the
// active category before the gesture applies.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	var view SessionView
	err := h.leads.Update(func(s *session.Session) error {
		if req.Category != "" {
			if err := s.SetActiveCategory(req.Category); err != nil {
				return err
			}
		}
		if err := s.Select(req.Row, req.Gesture); err != nil {
			return err
		}
		view = newSessionView(s)
		return nil
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.changed("select", nil)
	response.OK(w, view)
}

// HandleUndo handles POST /api/v1/session/undo.
func (h *Handlers) HandleUndo(w http.ResponseWriter, _ *http.Request) {
	var undone bool
	err := h.leads.Update(func(s *session.Session) error {
		var err error
		undone, err = s.Undo()
		return err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if undone {
		h.changed("undo", nil)
	}
	response.OK(w, map[string]any{"undone": undone})
}
