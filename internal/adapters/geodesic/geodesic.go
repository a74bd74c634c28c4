// Package geodesic measures great-circle distances between route points.
package geodesic

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"

	"github.com/okian/parkstats/internal/domain/model"
	"github.com/okian/parkstats/internal/domain/route"
)

// Mean Earth radius in supported units.
const (
	EarthRadiusKm    = 6371.0088
	EarthRadiusMiles = EarthRadiusKm * 0.621371
)

// Unit names a distance unit.
type Unit string

// Supported units.
const (
	Kilometers Unit = "km"
	Miles      Unit = "mi"
)

// ErrInvalidCoordinate reports a latitude or longitude outside WGS84 bounds.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ErrUnknownUnit reports a unit other than km or mi.
var ErrUnknownUnit = errors.New("unknown distance unit")

// ParseUnit accepts "km" or "mi".
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Kilometers, Miles:
		return Unit(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Radius returns the Earth radius in u.
func (u Unit) Radius() float64 {
	if u == Miles {
		return EarthRadiusMiles
	}
	return EarthRadiusKm
}

// Distance returns the great-circle distance between a and b in u.
func Distance(a, b model.RoutePoint, u Unit) (float64, error) {
	pa, err := latLng(a)
	if err != nil {
		return 0, err
	}
	pb, err := latLng(b)
	if err != nil {
		return 0, err
	}
	return pa.Distance(pb).Radians() * u.Radius(), nil
}

// Func returns a route.DistanceFunc measuring in u.
func Func(u Unit) route.DistanceFunc {
	return func(a, b model.RoutePoint) (float64, error) {
		return Distance(a, b, u)
	}
}

func latLng(p model.RoutePoint) (s2.LatLng, error) {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.Abs(p.Lat) > 90 || math.Abs(p.Lon) > 180 {
		return s2.LatLng{}, fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, p.Lat, p.Lon)
	}
	return s2.LatLngFromDegrees(p.Lat, p.Lon), nil
}
