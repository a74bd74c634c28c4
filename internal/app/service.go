// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/parkstats/internal/adapters/geodesic"
	"github.com/okian/parkstats/internal/adapters/source"
	"github.com/okian/parkstats/internal/domain/model"
	"github.com/okian/parkstats/internal/domain/records"
	"github.com/okian/parkstats/internal/domain/route"
	"github.com/okian/parkstats/internal/domain/stats"
	"github.com/okian/parkstats/internal/domain/timecodec"
	"github.com/okian/parkstats/pkg/logger"
	"github.com/okian/parkstats/pkg/metrics"
)

// Sentinel kinds for service errors.
var (
	ErrNotLoaded = errors.New("no results loaded")
	ErrNoRoute   = errors.New("no route loaded")
)

// Engine build outcomes reported to metrics.
const (
	buildOK        = "ok"
	buildSchema    = "schema"
	buildBadTime   = "bad_time"
	buildRunNumber = "run_number"
	buildError     = "error"
)

// dataset is one successfully loaded set of results and route.
type dataset struct {
	id          string
	loadedAt    time.Time
	engine      *stats.Engine
	route       model.Route
	routeLength float64
}

// Service implements the API dependencies for the statistics system.
type Service struct {
	mu sync.RWMutex

	current *dataset

	// Configuration
	eventDistance float64
	routeUnit     geodesic.Unit
	distance      route.DistanceFunc
	startLabel    string
	endLabel      string

	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. The process-wide manager is used by default.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithEventDistance sets the distance of one event in kilometers.
func WithEventDistance(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.eventDistance = km
		}
	}
}

// WithRouteUnit sets the unit the route is measured in. It also resets the
// distance oracle to the great-circle oracle for that unit.
func WithRouteUnit(u geodesic.Unit) Option {
	return func(s *Service) {
		if u == geodesic.Kilometers || u == geodesic.Miles {
			s.routeUnit = u
			s.distance = geodesic.Func(u)
		}
	}
}

// WithDistanceFunc replaces the distance oracle. It must measure in the
// configured route unit.
func WithDistanceFunc(fn route.DistanceFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.distance = fn
		}
	}
}

// WithLabels names the start and the end of the route.
func WithLabels(start, end string) Option {
	return func(s *Service) {
		s.startLabel = start
		s.endLabel = end
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		eventDistance: stats.DefaultEventDistance,
		routeUnit:     geodesic.Miles,
		distance:      geodesic.Func(geodesic.Miles),
		startLabel:    "Start",
		endLabel:      "You are here",
		metrics:       metrics.Global(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Load builds a statistics engine from results and measures rt. On any error
// the previously loaded dataset stays active. rt may be empty.
func (s *Service) Load(ctx context.Context, results model.Table, rt model.Route) error {
	start := time.Now()

	engine, err := stats.New(results, stats.WithEventDistance(s.eventDistance))
	if err != nil {
		s.metrics.RecordEngineBuild(buildOutcome(err))
		s.logger.Error(ctx, "failed to build statistics engine", logger.Error(err))
		return fmt.Errorf("build engine: %w", err)
	}
	s.metrics.RecordEngineBuild(buildOK)
	s.metrics.RecordRecordsNormalized(engine.Len())

	length, err := route.Length(ctx, rt, s.distance)
	if err != nil {
		s.logger.Error(ctx, "failed to measure route", logger.Error(err), logger.Int("points", len(rt)))
		return fmt.Errorf("measure route: %w", err)
	}

	ds := &dataset{
		id:          uuid.New().String(),
		loadedAt:    time.Now(),
		engine:      engine,
		route:       append(model.Route(nil), rt...),
		routeLength: length,
	}

	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()

	s.metrics.UpdateLoadedRecords(engine.Len())
	s.metrics.UpdateRoutePoints(len(rt))
	s.logger.Info(ctx, "dataset loaded",
		logger.String("dataset_id", ds.id),
		logger.Int("records", engine.Len()),
		logger.Bool("has_route", len(rt) > 0),
		logger.Int("route_points", len(rt)),
		logger.Float64("route_length", length),
		logger.String("route_unit", string(s.routeUnit)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// LoadFiles reads a results CSV and an optional GPX route, then calls Load.
func (s *Service) LoadFiles(ctx context.Context, resultsPath, routePath string) error {
	tbl, err := source.LoadResultsFile(resultsPath)
	if err != nil {
		return err
	}
	var rt model.Route
	if routePath != "" {
		if rt, err = source.LoadGPXFile(routePath); err != nil {
			return err
		}
	}
	return s.Load(ctx, tbl, rt)
}

// Status describes the active dataset.
type Status struct {
	Loaded      bool      `json:"loaded"`
	DatasetID   string    `json:"dataset_id,omitempty"`
	LoadedAt    time.Time `json:"loaded_at,omitzero"`
	Records     int       `json:"records"`
	RoutePoints int       `json:"route_points"`
}

// Status reports what is currently loaded.
func (s *Service) Status() Status {
	ds := s.snapshot()
	if ds == nil {
		return Status{}
	}
	return Status{
		Loaded:      true,
		DatasetID:   ds.id,
		LoadedAt:    ds.loadedAt,
		Records:     ds.engine.Len(),
		RoutePoints: len(ds.route),
	}
}

// Records returns the normalized records in date order.
func (s *Service) Records(_ context.Context) ([]model.NormalizedRecord, error) {
	ds := s.snapshot()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds.engine.Records(), nil
}

// RouteProjection is the route cut at the distance covered so far.
type RouteProjection struct {
	DatasetID      string             `json:"dataset_id"`
	Unit           string             `json:"unit"`
	TargetDistance float64            `json:"target_distance"`
	RouteLength    float64            `json:"route_length"`
	Progress       float64            `json:"progress"`
	Reached        bool               `json:"reached"`
	StartLabel     string             `json:"start_label"`
	EndLabel       string             `json:"end_label"`
	Points         []model.RoutePoint `json:"points"`
}

// Route projects the total distance run onto the loaded route.
func (s *Service) Route(ctx context.Context) (RouteProjection, error) {
	ds := s.snapshot()
	if ds == nil {
		return RouteProjection{}, ErrNotLoaded
	}
	if len(ds.route) == 0 {
		return RouteProjection{}, ErrNoRoute
	}

	target := ds.engine.TotalDistance()
	if s.routeUnit == geodesic.Miles {
		target *= stats.MileConversion
	}

	start := time.Now()
	res, err := route.Truncate(ctx, ds.route, target, s.distance)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		s.metrics.RecordRouteTruncation(metrics.OutcomeError, latencyMs)
		s.logger.Error(ctx, "route truncation failed", logger.Error(err), logger.Float64("target", target))
		return RouteProjection{}, err
	}

	outcome := metrics.OutcomeUnreached
	if res.Reached {
		outcome = metrics.OutcomeReached
	}
	s.metrics.RecordRouteTruncation(outcome, latencyMs)
	if !res.Reached {
		s.logger.Debug(ctx, "target distance covers the whole route",
			logger.Float64("target", target), logger.Float64("route_length", ds.routeLength))
	}

	progress := 1.0
	if ds.routeLength > 0 {
		progress = min(target/ds.routeLength, 1)
	}

	return RouteProjection{
		DatasetID:      ds.id,
		Unit:           string(s.routeUnit),
		TargetDistance: target,
		RouteLength:    ds.routeLength,
		Progress:       progress,
		Reached:        res.Reached,
		StartLabel:     s.startLabel,
		EndLabel:       s.endLabel,
		Points:         res.Points,
	}, nil
}

func (s *Service) snapshot() *dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func buildOutcome(err error) string {
	switch {
	case errors.Is(err, records.ErrSchema):
		return buildSchema
	case errors.Is(err, timecodec.ErrBadTimeFormat):
		return buildBadTime
	case errors.Is(err, records.ErrRunNumberType):
		return buildRunNumber
	default:
		return buildError
	}
}
