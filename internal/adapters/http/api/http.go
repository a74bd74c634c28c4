// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/parkstats/internal/adapters/geodesic"
	service "github.com/okian/parkstats/internal/app"
	"github.com/okian/parkstats/internal/domain/model"
	"github.com/okian/parkstats/internal/domain/route"
	"github.com/okian/parkstats/internal/domain/stats"
	"github.com/okian/parkstats/pkg/logger"
	"github.com/okian/parkstats/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Status() service.Status
	Summary(ctx context.Context, unit geodesic.Unit) (service.Summary, error)
	Route(ctx context.Context) (service.RouteProjection, error)
	Records(ctx context.Context) ([]model.NormalizedRecord, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	summaryHandler *SummaryHandler
	routeHandler   *RouteHandler
	recordsHandler *RecordsHandler

	registry *prometheus.Registry
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	defaultUnit geodesic.Unit
	logger      logger.Logger
	registry    *prometheus.Registry
}

// WithDefaultUnit sets the unit used by /summary when none is requested.
func WithDefaultUnit(u geodesic.Unit) Option {
	return func(o *serverOptions) {
		if u != "" {
			o.defaultUnit = u
		}
	}
}

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegistry sets the registry exposed on /metrics.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *serverOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{
		defaultUnit: geodesic.Kilometers,
		registry:    metrics.GetRegistry(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	log := o.logger.Named("api")

	return &Server{
		healthHandler:  NewHealthHandler(deps),
		summaryHandler: NewSummaryHandler(deps, o.defaultUnit, log),
		routeHandler:   NewRouteHandler(deps, log),
		recordsHandler: NewRecordsHandler(deps, log),
		registry:       o.registry,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	wrap := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
	}

	mux.HandleFunc("/healthz", wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/summary", wrap(s.summaryHandler.HandleSummary, "summary"))
	mux.HandleFunc("/route", wrap(s.routeHandler.HandleRoute, "route"))
	mux.HandleFunc("/records", wrap(s.recordsHandler.HandleRecords, "records"))
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
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

// statusFor maps service and domain errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotLoaded):
		return http.StatusServiceUnavailable, "not_loaded"
	case errors.Is(err, service.ErrNoRoute):
		return http.StatusNotFound, "no_route"
	case errors.Is(err, geodesic.ErrUnknownUnit), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, stats.ErrArithmetic),
		errors.Is(err, route.ErrEmptyRoute),
		errors.Is(err, route.ErrNegativeTarget),
		errors.Is(err, geodesic.ErrInvalidCoordinate):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err using statusFor and logs server side failures.
func fail(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("request_id", RequestID(r.Context())),
			logger.Error(err))
	}
	writeError(w, status, code, err)
}
