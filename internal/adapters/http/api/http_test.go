package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/fwtrank/internal/adapters/http/api"
	service "github.com/okian/fwtrank/internal/app"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	events    []model.EventSummary
	eventsErr error
	report    report.EventReport
	reportErr error
	lastEvent string
}

func (m *mockDependencies) Events(context.Context) ([]model.EventSummary, error) {
	return m.events, m.eventsErr
}

func (m *mockDependencies) AthleteData(_ context.Context, eventID string) (report.EventReport, error) {
	m.lastEvent = eventID
	return m.report, m.reportErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{
			events: []model.EventSummary{{ID: "e1", Name: "Verbier Open", Date: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)}},
			report: report.EventReport{EventName: "Verbier Open", Athletes: []report.AthleteReport{}},
		}
		server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
		mux := http.NewServeMux()
		server.Register(mux)

		Convey("Then health endpoint should expose metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats endpoint should return the provider's map", func() {
			w := serve(mux, http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then events endpoint should list events", func() {
			w := serve(mux, http.MethodGet, "/events", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			var events []model.EventSummary
			So(json.Unmarshal(w.Body.Bytes(), &events), ShouldBeNil)
			So(len(events), ShouldEqual, 1)
			So(events[0].ID, ShouldEqual, "e1")
		})

		Convey("Then athlete data endpoint should return the report", func() {
			w := serve(mux, http.MethodGet, "/athlete_data?event_id=%20e1%20", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastEvent, ShouldEqual, "e1")
			So(w.Body.String(), ShouldContainSubstring, `"athletes":[]`)
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, http.MethodGet, "/unknown", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then writes are not allowed", func() {
			for _, path := range []string{"/events", "/athlete_data?event_id=1", "/stats"} {
				w := serve(mux, http.MethodPost, path, nil)
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
			}
		})
	})
}

func TestEventsHandler(t *testing.T) {
	Convey("Given an events handler", t, func() {
		deps := &mockDependencies{}
		h := http.HandlerFunc(api.NewEventsHandler(deps).HandleGetEvents)

		Convey("When there are no events", func() {
			w := serve(h, http.MethodGet, "/events", nil)

			Convey("Then an empty JSON array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "[]\n")
			})
		})

		Convey("When upstream fails", func() {
			deps.eventsErr = fmt.Errorf("%w: timeout", service.ErrUpstream)
			w := serve(h, http.MethodGet, "/events", nil)

			Convey("Then it answers bad gateway", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeError(w)["code"], ShouldEqual, "upstream_error")
			})
		})
	})
}

func TestAthleteDataHandler(t *testing.T) {
	Convey("Given an athlete data handler", t, func() {
		deps := &mockDependencies{}
		h := http.HandlerFunc(api.NewAthleteDataHandler(deps).HandleGetAthleteData)

		Convey("When event_id is missing", func() {
			w := serve(h, http.MethodGet, "/athlete_data", nil)

			Convey("Then it answers bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
				So(deps.lastEvent, ShouldBeEmpty)
			})
		})

		Convey("When the event is unknown", func() {
			deps.reportErr = fmt.Errorf("%w: 99", service.ErrEventNotFound)
			w := serve(h, http.MethodGet, "/athlete_data?event_id=99", nil)

			Convey("Then it answers not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "not_found")
				So(decodeError(w)["message"], ShouldContainSubstring, "api.get_athlete_data")
			})
		})

		Convey("When the service rejects the id", func() {
			deps.reportErr = service.ErrInvalidEventID
			w := serve(h, http.MethodGet, "/athlete_data?event_id=x", nil)

			Convey("Then it answers bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When upstream fails", func() {
			deps.reportErr = fmt.Errorf("%w: every series fetch failed", service.ErrUpstream)
			w := serve(h, http.MethodGet, "/athlete_data?event_id=1", nil)

			Convey("Then it answers bad gateway", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
			})
		})

		Convey("When upstream times out", func() {
			deps.reportErr = fmt.Errorf("%w: %w", service.ErrUpstream, context.DeadlineExceeded)
			w := serve(h, http.MethodGet, "/athlete_data?event_id=1", nil)

			Convey("Then it answers gateway timeout", func() {
				So(w.Code, ShouldEqual, http.StatusGatewayTimeout)
			})
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given the full handler chain", t, func() {
		server := api.NewServer(&mockDependencies{}, &mockStatsProvider{stats: map[string]interface{}{}})

		Convey("When no request id is sent", func() {
			w := serve(server.Handler(nil), http.MethodGet, "/events", nil)

			Convey("Then one is generated", func() {
				So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
			})
		})

		Convey("When a request id is sent", func() {
			w := serve(server.Handler(nil), http.MethodGet, "/events", map[string]string{api.RequestIDHeader: "req-1"})

			Convey("Then it is echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-1")
			})
		})

		Convey("When an allowed origin calls", func() {
			h := server.Handler([]string{"https://fwt.example"})
			w := serve(h, http.MethodGet, "/events", map[string]string{"Origin": "https://fwt.example"})
			other := serve(h, http.MethodGet, "/events", map[string]string{"Origin": "https://evil.example"})

			Convey("Then only that origin is allowed", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://fwt.example")
				So(other.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})

		Convey("When a preflight request arrives", func() {
			w := serve(server.Handler([]string{"*"}), http.MethodOptions, "/athlete_data", map[string]string{
				"Origin":                        "https://any.example",
				"Access-Control-Request-Method": http.MethodGet,
			})

			Convey("Then it is answered without reaching the handler", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given a handler behind the request-id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = api.RequestID(r.Context())
		}))
		w := serve(h, http.MethodGet, "/", nil)

		Convey("Then the context carries the response header value", func() {
			So(seen, ShouldNotBeEmpty)
			So(seen, ShouldEqual, w.Header().Get(api.RequestIDHeader))
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrUpstream, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrUpstream), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: upstream failure: boom")
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
		})
	})
}
