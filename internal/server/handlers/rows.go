package handlers

import (
	"net/http"

	"github.com/cofina/leads/internal/server/response"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/session"
)

type rowsRequest struct {
	Category string `json:"category"`
	Rows     []int  `json:"rows"`
}

// HandleAddRow handles POST /api/v1/session/rows.
func (h *Handlers) HandleAddRow(w http.ResponseWriter, r *http.Request) {
	var req rowsRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	var at int
	err := h.leads.Update(func(s *session.Session) error {
		var err error
		at, err = s.AddRow(req.Category)
		return err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.changed("row_added", map[string]any{"category": req.Category, "row": at})
	response.Created(w, map[string]any{"category": req.Category, "row": at})
}

// HandleDeleteRows handles POST /api/v1/session/rows/delete.
func (h *Handlers) HandleDeleteRows(w http.ResponseWriter, r *http.Request) {
	var req rowsRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	var n int
	err := h.leads.Update(func(s *session.Session) error {
		rows := req.Rows
		if len(rows) == 0 && req.Category == s.ActiveCategory() {
			rows = s.Selected()
		}
		var err error
		n, err = s.DeleteRows(req.Category, rows)
		return err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if n > 0 {
		h.changed("rows_deleted", map[string]any{"category": req.Category, "rows": n})
	}
	response.OK(w, map[string]any{"category": req.Category, "deleted": n})
}

// HandleCopyRows handles POST /api/v1/session/rows/copy. The clipboard is
// returned to the client, which sends it back to paste.
func (h *Handlers) HandleCopyRows(w http.ResponseWriter, r *http.Request) {
	var req rowsRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	var clip session.Clipboard
	err := h.leads.View(func(s *session.Session) error {
		rows := req.Rows
		if len(rows) == 0 && req.Category == s.ActiveCategory() {
			rows = s.Selected()
		}
		var err error
		clip, err = s.CopyRows(req.Category, rows)
		return err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, clip)
}

type pasteRequest struct {
	Category  string            `json:"category"`
	Clipboard session.Clipboard `json:"clipboard"`
	// After is the anchor row; nil pastes at the end.
	After *int `json:"after"`
}

// HandlePasteRows handles POST /api/v1/session/rows/paste.
func (h *Handlers) HandlePasteRows(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if req.Clipboard.Empty() {
		response.ErrorFromType(w, errors.NewValidationError("clipboard", nil, "clipboard is empty"))
		return
	}
	after := session.NoAnchor
	if req.After != nil {
		after = *req.After
	}

	var at int
	err := h.leads.Update(func(s *session.Session) error {
		var err error
		at, err = s.PasteRows(req.Category, req.Clipboard, after)
		return err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	n := len(req.Clipboard.Rows)
	h.changed("rows_pasted", map[string]any{"category": req.Category, "rows": n})
	response.Created(w, map[string]any{"category": req.Category, "row": at, "pasted": n})
}
