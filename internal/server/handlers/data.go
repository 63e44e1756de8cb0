package handlers

import (
	"net/http"
	"strings"

	"github.com/cofina/leads/internal/server/cache"
	"github.com/cofina/leads/internal/server/events"
	"github.com/cofina/leads/internal/server/response"
	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/session"
	"github.com/cofina/leads/pkg/store"
)

// CategoryView is a category as clients see it, staged edits included.
type CategoryView struct {
	Name    string              `json:"name"`
	Roster  bool                `json:"roster"`
	Columns []categories.Column `json:"columns"`
	Rows    [][]string          `json:"rows"`
	// Indices maps each returned row to its position in the category.
	// It is set only for filtered views.
	Indices []int `json:"indices,omitempty"`
}

func newCategoryView(c *categories.Category, indices []int) CategoryView {
	v := CategoryView{
		Name:    c.Name,
		Roster:  c.Roster,
		Columns: c.Schema,
	}
	if indices == nil {
		v.Rows = make([][]string, len(c.Rows))
		for i, r := range c.Rows {
			v.Rows[i] = r.Cells
		}
		return v
	}
	v.Indices = indices
	v.Rows = make([][]string, len(indices))
	for i, at := range indices {
		v.Rows[i] = c.Rows[at].Cells
	}
	return v
}

// HandleData handles GET /api/v1/data.
func (h *Handlers) HandleData(w http.ResponseWriter, _ *http.Request) {
	v, err := h.cache.Remember(cache.KeyWorkbook, func() (any, error) {
		var out []CategoryView
		err := h.leads.View(func(s *session.Session) error {
			for _, name := range s.Workbook().Names() {
				c, err := s.Display(name)
				if err != nil {
					return err
				}
				out = append(out, newCategoryView(c, nil))
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, v)
}

// HandleCategory handles GET /api/v1/categories/{name}?q=term.
// With a term, rows are filtered and accepted rows come first.
func (h *Handlers) HandleCategory(w http.ResponseWriter, r *http.Request, name string) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	v, err := h.cache.Remember(cache.CategoryKey(name, term), func() (any, error) {
		var view CategoryView
		err := h.leads.View(func(s *session.Session) error {
			c, err := s.Display(name)
			if err != nil {
				return err
			}
			var indices []int
			if term != "" {
				if indices, err = s.Search(name, term); err != nil {
					return err
				}
				if indices == nil {
					indices = []int{}
				}
			}
			view = newCategoryView(c, indices)
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

// saveRequest is the body of the legacy save endpoint.
type saveRequest struct {
	SheetName        string                 `json:"sheet_name"`
	EditedData       map[int]map[int]string `json:"edited_data"`
	Accepted         map[int]bool           `json:"accepted"`
	LinkedInAccepted map[int]bool           `json:"linkedin_accepted"`
}

// HandleSave handles POST /api/v1/save. Each non-empty map in the body
// replaces the stored map of the same name for that sheet; empty or missing
// maps keep what is stored. Keys are source row indexes. The state reaches
// the workbook on the next reload.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if strings.TrimSpace(req.SheetName) == "" {
		response.BadRequest(w, "sheet_name is required", "")
		return
	}

	change := store.NewState()
	for row, cols := range req.EditedData {
		for col, v := range cols {
			change.SetCell(row, col, v)
		}
	}
	for row, v := range req.Accepted {
		change.Accepted[row] = v
	}
	for row, v := range req.LinkedInAccepted {
		change.LinkedInAccepted[row] = v
	}

	if err := h.leads.Repository().Replace(r.Context(), req.SheetName, change); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Str("category", req.SheetName).Msg("Legacy save failed")
		response.ErrorFromType(w, errors.WrapResource("save", "state", req.SheetName, err))
		return
	}

	h.broker.Publish(events.StateSaved, map[string]any{
		"category": req.SheetName,
		"changes":  change.Len(),
	})
	response.OK(w, map[string]any{"success": true, "changes": change.Len()})
}
