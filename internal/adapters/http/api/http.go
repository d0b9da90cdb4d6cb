// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/fwtrank/internal/app"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/internal/domain/report"
	"github.com/okian/fwtrank/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Events lists the upcoming events.
	Events(ctx context.Context) ([]model.EventSummary, error)

	// AthleteData returns the athlete report of one event.
	AthleteData(ctx context.Context, eventID string) (report.EventReport, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	athleteDataHandler *AthleteDataHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		eventsHandler:      NewEventsHandler(deps),
		athleteDataHandler: NewAthleteDataHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleGetEvents, "events"))
	mux.HandleFunc("/athlete_data", MetricsMiddleware(s.athleteDataHandler.HandleGetAthleteData, "athlete_data"))
}

// Handler returns the registered routes behind the request-id and CORS
// middleware.
func (s *Server) Handler(corsOrigins []string) http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return RequestIDMiddleware(CORSMiddleware(corsOrigins)(mux))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service error kinds to a status and an API kind.
func writeServiceError(w http.ResponseWriter, endpoint, op string, err error) {
	var (
		status = http.StatusBadGateway
		code   = "upstream_error"
		kind   = ErrUpstream
	)
	switch {
	case errors.Is(err, service.ErrInvalidEventID):
		status, code, kind = http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, service.ErrEventNotFound):
		status, code, kind = http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	metrics.RecordHTTPError(endpoint, code)
	writeError(w, status, code, WrapKind(op, kind, err))
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}
