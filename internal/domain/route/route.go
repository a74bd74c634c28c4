// Package route projects a cumulative distance onto an ordered point
// sequence and cuts the sequence where that distance is reached.
package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/parkstats/internal/domain/model"
)

// Sentinel kinds for projection errors.
var (
	ErrEmptyRoute     = errors.New("route has no points")
	ErrNegativeTarget = errors.New("target distance is negative")
)

// DistanceFunc returns the non-negative distance between two points. Its
// unit is the unit of every target distance passed alongside it.
type DistanceFunc func(a, b model.RoutePoint) (float64, error)

// Result is a truncated route. Reached reports whether the target distance
// fell on or before the end of the route.
type Result struct {
	Points  []model.RoutePoint `json:"points"`
	Reached bool               `json:"reached"`
}

// Truncate walks points in order, summing segment distances, and returns the
// prefix of the route covering target. When target falls inside a segment the
// cut point is interpolated linearly in latitude and longitude, which is only
// a fair stand-in for the great-circle point on short segments.
//
// Errors from distance are returned unchanged.
func Truncate(ctx context.Context, points []model.RoutePoint, target float64, distance DistanceFunc) (Result, error) {
	if len(points) == 0 {
		return Result{}, ErrEmptyRoute
	}
	if target < 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrNegativeTarget, target)
	}
	if len(points) == 1 {
		return Result{Points: []model.RoutePoint{points[0]}, Reached: target <= 0}, nil
	}

	out := make([]model.RoutePoint, 0, len(points))
	cumulative := 0.0
	for i, p := range points {
		var segment float64
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			d, err := distance(points[i-1], p)
			if err != nil {
				return Result{}, err
			}
			segment = d
			cumulative += segment
		}

		if cumulative <= target {
			out = append(out, p)
			continue
		}

		prev := points[i-1]
		fraction := 1 - (cumulative-target)/segment
		out = append(out, model.RoutePoint{
			Lat: prev.Lat + fraction*(p.Lat-prev.Lat),
			Lon: prev.Lon + fraction*(p.Lon-prev.Lon),
		})
		return Result{Points: out, Reached: true}, nil
	}
	return Result{Points: out, Reached: false}, nil
}

// Length returns the total distance along points.
func Length(ctx context.Context, points []model.RoutePoint, distance DistanceFunc) (float64, error) {
	total := 0.0
	for i := 1; i < len(points); i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		d, err := distance(points[i-1], points[i])
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}
