package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/okian/parkstats/internal/adapters/geodesic"
	"github.com/okian/parkstats/internal/adapters/http/api"
	service "github.com/okian/parkstats/internal/app"
	"github.com/okian/parkstats/internal/domain/model"
	"github.com/okian/parkstats/internal/domain/stats"
	"github.com/okian/parkstats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

type mockDeps struct {
	status     service.Status
	summaryErr error
	routeErr   error
	recordsErr error
	records    []model.NormalizedRecord
	lastUnit   geodesic.Unit
}

func (m *mockDeps) Status() service.Status { return m.status }

func (m *mockDeps) Summary(_ context.Context, unit geodesic.Unit) (service.Summary, error) {
	m.lastUnit = unit
	if m.summaryErr != nil {
		return service.Summary{}, m.summaryErr
	}
	return service.Summary{DatasetID: "ds-1", Unit: string(unit), Runs: 3, TotalDistance: 15}, nil
}

func (m *mockDeps) Route(_ context.Context) (service.RouteProjection, error) {
	if m.routeErr != nil {
		return service.RouteProjection{}, m.routeErr
	}
	return service.RouteProjection{
		DatasetID: "ds-1",
		Unit:      "mi",
		Reached:   true,
		Points:    []model.RoutePoint{{Lat: 50, Lon: -5}, {Lat: 50.1, Lon: -5}},
	}, nil
}

func (m *mockDeps) Records(_ context.Context) ([]model.NormalizedRecord, error) {
	if m.recordsErr != nil {
		return nil, m.recordsErr
	}
	return append([]model.NormalizedRecord(nil), m.records...), nil
}

func newMux(deps *mockDeps, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	opts = append([]api.Option{api.WithRegistry(prometheus.NewRegistry())}, opts...)
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func sampleRecords() []model.NormalizedRecord {
	day := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	return []model.NormalizedRecord{
		{Event: "Bushy Park", RunDate: day, RunNumber: 1000},
		{Event: "Fulham Palace", RunDate: day.AddDate(0, 0, 7), RunNumber: 12},
		{Event: "Bushy Park", RunDate: day.AddDate(0, 0, 14), RunNumber: 1002},
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{status: service.Status{Loaded: true, DatasetID: "ds-1", Records: 3}}
		mux := newMux(deps)

		Convey("When calling /healthz", func() {
			w := get(mux, "/healthz")

			Convey("Then it should report the dataset", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				var body struct {
					Status  string         `json:"status"`
					Dataset service.Status `json:"dataset"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Status, ShouldEqual, "ok")
				So(body.Dataset.Records, ShouldEqual, 3)
			})
		})

		Convey("When nothing is loaded", func() {
			mux := newMux(&mockDeps{})
			w := get(mux, "/healthz")

			Convey("Then health should still answer", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"empty"`)
			})
		})

		Convey("When calling /metrics", func() {
			w := get(mux, "/metrics")

			Convey("Then the registry should be served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When calling an unknown path", func() {
			w := get(mux, "/unknown")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When posting to a read endpoint", func() {
			req := httptest.NewRequest(http.MethodPost, "/summary", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a nil mux", t, func() {
		Convey("Then registering should panic", func() {
			So(func() { api.NewServer(&mockDeps{}).Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestSummaryHandler(t *testing.T) {
	Convey("Given a server with miles as the default unit", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps, api.WithDefaultUnit(geodesic.Miles))

		Convey("When no unit is requested", func() {
			w := get(mux, "/summary")

			Convey("Then the default unit should be used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastUnit, ShouldEqual, geodesic.Miles)
				var sum service.Summary
				So(json.Unmarshal(w.Body.Bytes(), &sum), ShouldBeNil)
				So(sum.Runs, ShouldEqual, 3)
			})
		})

		Convey("When kilometers are requested", func() {
			w := get(mux, "/summary?unit=km")

			Convey("Then kilometers should be used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastUnit, ShouldEqual, geodesic.Kilometers)
			})
		})

		Convey("When an unknown unit is requested", func() {
			w := get(mux, "/summary?unit=furlong")

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})
	})

	Convey("Given a service with nothing loaded", t, func() {
		mux := newMux(&mockDeps{summaryErr: service.ErrNotLoaded})

		Convey("Then /summary should be unavailable", func() {
			w := get(mux, "/summary")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w)["code"], ShouldEqual, "not_loaded")
		})
	})

	Convey("Given a service failing unexpectedly", t, func() {
		mux := newMux(&mockDeps{summaryErr: errors.New("disk on fire")})

		Convey("Then /summary should be an internal error", func() {
			w := get(mux, "/summary")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["message"], ShouldEqual, "disk on fire")
		})
	})
}

func TestRouteHandler(t *testing.T) {
	Convey("Given a route handler", t, func() {
		Convey("When the route projects", func() {
			w := get(newMux(&mockDeps{}), "/route")

			Convey("Then the points should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var proj service.RouteProjection
				So(json.Unmarshal(w.Body.Bytes(), &proj), ShouldBeNil)
				So(proj.Points, ShouldHaveLength, 2)
				So(proj.Reached, ShouldBeTrue)
			})
		})

		Convey("When no route is loaded", func() {
			w := get(newMux(&mockDeps{routeErr: service.ErrNoRoute}), "/route")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "no_route")
			})
		})

		Convey("When the projection hits an arithmetic failure", func() {
			err := fmt.Errorf("project: %w", stats.ErrZeroDistance)
			w := get(newMux(&mockDeps{routeErr: err}), "/route")

			Convey("Then it should be unprocessable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})
		})
	})
}

func TestRecordsHandler(t *testing.T) {
	Convey("Given loaded records", t, func() {
		mux := newMux(&mockDeps{records: sampleRecords()})

		decode := func(w *httptest.ResponseRecorder) []model.NormalizedRecord {
			var recs []model.NormalizedRecord
			So(json.Unmarshal(w.Body.Bytes(), &recs), ShouldBeNil)
			return recs
		}

		Convey("When listing all records", func() {
			w := get(mux, "/records")

			Convey("Then every record should be returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				recs := decode(w)
				So(recs, ShouldHaveLength, 3)
				So(recs[1].Event, ShouldEqual, "Fulham Palace")
			})
		})

		Convey("When filtering by event", func() {
			recs := decode(get(mux, "/records?event=bushy%20park"))

			Convey("Then only that event should be returned", func() {
				So(recs, ShouldHaveLength, 2)
				So(recs[1].RunNumber, ShouldEqual, 1002)
			})
		})

		Convey("When limiting", func() {
			recs := decode(get(mux, "/records?limit=1"))

			Convey("Then the most recent record should be returned", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].RunNumber, ShouldEqual, 1002)
			})
		})

		Convey("When filtering by an event never run", func() {
			w := get(mux, "/records?event=nowhere")

			Convey("Then an empty list should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldStartWith, "[]")
			})
		})

		Convey("When the limit is invalid", func() {
			for _, limit := range []string{"0", "-3", "ten"} {
				w := get(mux, "/records?limit="+limit)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given a handler behind the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
			seen = api.RequestID(r.Context())
		})

		Convey("When the caller sends an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h(w, req)

			Convey("Then it should be reused", func() {
				So(seen, ShouldEqual, "abc-123")
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})

		Convey("When the caller sends none", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			Convey("Then a fresh id should be assigned", func() {
				So(seen, ShouldHaveLength, 36)
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, seen)
			})
		})
	})
}
