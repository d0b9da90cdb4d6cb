// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/fwtrank/internal/domain/model"
)

// EventLister lists upcoming events.
type EventLister interface {
	Events(ctx context.Context) ([]model.EventSummary, error)
}

// EventsHandler handles event list requests.
type EventsHandler struct {
	deps EventLister
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventLister) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleGetEvents handles GET /events requests.
func (h *EventsHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_events"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	events, err := h.deps.Events(r.Context())
	if err != nil {
		writeServiceError(w, "events", op, err)
		return
	}
	if events == nil {
		events = []model.EventSummary{}
	}
	writeJSON(w, http.StatusOK, events)
}
