package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/fwtrank/internal/domain/report"
)

// ReportProvider builds the athlete report of an event.
type ReportProvider interface {
	AthleteData(ctx context.Context, eventID string) (report.EventReport, error)
}

// AthleteDataHandler serves per-event athlete reports.
type AthleteDataHandler struct {
	deps ReportProvider
}

// NewAthleteDataHandler creates a new athlete data handler.
func NewAthleteDataHandler(deps ReportProvider) *AthleteDataHandler {
	return &AthleteDataHandler{deps: deps}
}

// HandleGetAthleteData handles GET /athlete_data?event_id= requests.
func (h *AthleteDataHandler) HandleGetAthleteData(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_athlete_data"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	eventID := strings.TrimSpace(r.URL.Query().Get("event_id"))
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rep, err := h.deps.AthleteData(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, "athlete_data", op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
