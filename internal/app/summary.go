package service

import (
	"context"

	"github.com/okian/parkstats/internal/adapters/geodesic"
	"github.com/okian/parkstats/internal/domain/stats"
	"github.com/okian/parkstats/internal/domain/timecodec"
	"github.com/okian/parkstats/internal/domain/types"
	"github.com/okian/parkstats/pkg/logger"
)

// Metric names used in Summary.Unavailable and in metrics labels.
const (
	MetricAverageSpeed     = "average_speed"
	MetricAveragePace      = "average_pace"
	MetricLongestGap       = "longest_gap_weeks"
	MetricAverageGap       = "average_gap_weeks"
	MetricParkrunsPerWeek  = "parkruns_per_week"
	MetricMostPopularEvent = "most_popular_event"
	MetricFirstEvent       = "first_event"
	MetricYoungestEvent    = "youngest_event"
	MetricOldestEvent      = "oldest_event"
)

// Summary gathers every statistic for display. Distances and speeds are in
// Unit. Metrics that could not be computed are nil and listed in Unavailable
// with the reason.
type Summary struct {
	DatasetID string `json:"dataset_id"`
	Unit      string `json:"unit"`

	Runs          int           `json:"runs"`
	TotalDistance float64       `json:"total_distance"`
	TotalTime     timecodec.HMS `json:"total_time"`
	TotalTimeText string        `json:"total_time_text"`

	AverageSpeedPerHour *float64       `json:"average_speed_per_hour,omitempty"`
	AveragePace         *timecodec.HMS `json:"average_pace,omitempty"`
	AveragePaceText     string         `json:"average_pace_text,omitempty"`

	LongestStreak   int      `json:"longest_streak"`
	LongestGapWeeks *float64 `json:"longest_gap_weeks,omitempty"`
	AverageGapWeeks *float64 `json:"average_gap_weeks,omitempty"`
	ParkrunsPerWeek *float64 `json:"parkruns_per_week,omitempty"`

	DifferentEvents  int                   `json:"different_events"`
	MostPopularEvent *types.EventCount     `json:"most_popular_event,omitempty"`
	FirstEvent       string                `json:"first_event,omitempty"`
	YoungestEvent    *types.EventRunNumber `json:"youngest_event,omitempty"`
	OldestEvent      *types.EventRunNumber `json:"oldest_event,omitempty"`
	EventCounts      []types.EventCount    `json:"event_counts"`

	Unavailable map[string]string `json:"unavailable,omitempty"`
}

// Summary computes every statistic of the loaded results in unit. A failing
// metric does not fail the summary; it is reported in Unavailable instead.
func (s *Service) Summary(ctx context.Context, unit geodesic.Unit) (Summary, error) {
	ds := s.snapshot()
	if ds == nil {
		return Summary{}, ErrNotLoaded
	}
	if _, err := geodesic.ParseUnit(string(unit)); err != nil {
		return Summary{}, err
	}
	e := ds.engine

	conv := 1.0
	if unit == geodesic.Miles {
		conv = stats.MileConversion
	}

	out := Summary{
		DatasetID:       ds.id,
		Unit:            string(unit),
		Runs:            e.Len(),
		TotalDistance:   e.TotalDistance() * conv,
		TotalTime:       e.TotalTime(),
		LongestStreak:   e.LongestStreak(),
		DifferentEvents: e.DifferentEventCount(),
		EventCounts:     e.EventCounts(),
	}
	out.TotalTimeText = out.TotalTime.Clock()

	fail := func(metric string, err error) {
		if out.Unavailable == nil {
			out.Unavailable = make(map[string]string)
		}
		out.Unavailable[metric] = err.Error()
		s.metrics.RecordMetricError(metric)
		s.logger.Debug(ctx, "metric unavailable", logger.String("metric", metric), logger.Error(err))
	}

	if v, err := e.AverageSpeedPerHour(); err != nil {
		fail(MetricAverageSpeed, err)
	} else {
		v *= conv
		out.AverageSpeedPerHour = &v
	}

	if v, err := e.AveragePacePerUnitDistance(conv); err != nil {
		fail(MetricAveragePace, err)
	} else {
		out.AveragePace = &v
		out.AveragePaceText = v.Clock()
	}

	if v, err := e.LongestGapWeeks(); err != nil {
		fail(MetricLongestGap, err)
	} else {
		out.LongestGapWeeks = &v
	}

	if v, err := e.AverageGapWeeks(); err != nil {
		fail(MetricAverageGap, err)
	} else {
		out.AverageGapWeeks = &v
	}

	if v, err := e.ParkrunsPerWeek(); err != nil {
		fail(MetricParkrunsPerWeek, err)
	} else {
		out.ParkrunsPerWeek = &v
	}

	if v, err := e.MostPopularEvent(); err != nil {
		fail(MetricMostPopularEvent, err)
	} else {
		out.MostPopularEvent = &v
	}

	if v, err := e.FirstEvent(); err != nil {
		fail(MetricFirstEvent, err)
	} else {
		out.FirstEvent = v
	}

	if v, err := e.EventWithMinRunNumber(); err != nil {
		fail(MetricYoungestEvent, err)
	} else {
		out.YoungestEvent = &v
	}

	if v, err := e.EventWithMaxRunNumber(); err != nil {
		fail(MetricOldestEvent, err)
	} else {
		out.OldestEvent = &v
	}

	return out, nil
}
