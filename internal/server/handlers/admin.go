package handlers

import (
	"net/http"

	"github.com/cofina/leads/internal/server/response"
	"github.com/cofina/leads/pkg/logging"
)

// HandleReload handles POST /api/v1/reload. Pending edits of the old
// session are discarded. The reload hook refreshes caches and clients.
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	report, err := h.leads.Reload(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("Reload failed")
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, report)
}

type markRequest struct {
	URLs []string `json:"urls"`
}

// HandleMark handles POST /api/v1/mark, flagging every row whose identity
// matches one of the given profile URLs.
func (h *Handlers) HandleMark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := decode(r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if len(req.URLs) == 0 {
		response.BadRequest(w, "urls is required", "")
		return
	}
	report, err := h.leads.Mark(r.Context(), req.URLs)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, report)
}
