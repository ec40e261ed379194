// Package itinerary reconciles the unordered records returned by the model
// into an ordered day plan, a timeline of stops and legs, and a map view.
// Everything here is synchronous, deterministic, and free of I/O.
package itinerary

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/pkordes/dayplanner/internal/domain"
)

// DefaultPrecision is the number of decimal digits coordinates are rounded to
// before they are compared. Six digits is roughly 0.1 m at the equator.
const DefaultPrecision = 6

// MaxPrecision is the most decimal digits a float64 coordinate can carry.
// Larger precisions are clamped to it.
const MaxPrecision = 15

// Registry parses, normalises and remembers every coordinate pair seen in one
// batch, whether it came from a location or from a line endpoint.
type Registry struct {
	scale  float64 // 0 disables rounding
	points []domain.Point
}

// NewRegistry returns a Registry that rounds coordinates to precision decimal
// digits. A negative precision keeps coordinates exactly as parsed.
func NewRegistry(precision int) *Registry {
	r := &Registry{}
	if precision >= 0 {
		r.scale = math.Pow10(min(precision, MaxPrecision))
	}
	return r
}

// Register parses lat and lng and stores the normalised point.
// A coordinate that cannot be parsed, or parses to a non-finite value, becomes
// NaN: the returned point is not Valid and callers treat it as an unknown
// location. Register never fails.
func (r *Registry) Register(lat, lng domain.Number) domain.Point {
	p := domain.Point{Lat: r.normalize(parseCoordinate(lat)), Lng: r.normalize(parseCoordinate(lng))}
	r.points = append(r.points, p)
	return p
}

// Len returns the number of registered points, valid or not.
func (r *Registry) Len() int {
	return len(r.points)
}

// Bounds returns the smallest rectangle containing every valid registered
// point, or nil when there is none.
func (r *Registry) Bounds() *domain.Bounds {
	return Bounds(r.points)
}

func (r *Registry) normalize(v float64) float64 {
	if r.scale == 0 || math.IsNaN(v) {
		return v
	}
	return math.Round(v*r.scale) / r.scale
}

// Equal reports whether two points are the same location: exact equality on
// both (already normalised) coordinates, no tolerance. Unknown locations are
// never equal to anything, including themselves.
func Equal(p1, p2 domain.Point) bool {
	if !p1.Valid() || !p2.Valid() {
		return false
	}
	return p1.Lat == p2.Lat && p1.Lng == p2.Lng
}

// Bounds returns the bounding rectangle of the valid points, or nil.
func Bounds(points []domain.Point) *domain.Bounds {
	rect := s2.EmptyRect()
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lng))
	}
	if rect.IsEmpty() {
		return nil
	}
	return &domain.Bounds{
		South: rect.Lo().Lat.Degrees(),
		West:  rect.Lo().Lng.Degrees(),
		North: rect.Hi().Lat.Degrees(),
		East:  rect.Hi().Lng.Degrees(),
	}
}

// parseCoordinate returns NaN for anything that is not a finite number.
func parseCoordinate(n domain.Number) float64 {
	v, err := n.Float()
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
