// Package domain contains the core data types for the day planner.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (itinerary, layout, service, handler).
package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Point is a geographic coordinate in decimal degrees.
// A Point whose Lat or Lng is not finite marks an unknown location: it is
// excluded from bounds and never equal to any other point.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite numbers.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// MarshalJSON writes an unknown location as null so that a NaN never
// reaches encoding/json (which rejects it).
func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return []byte("null"), nil
	}
	type plain Point
	return json.Marshal(plain(p))
}

// Number is a numeric value exactly as the model sent it.
// Models return coordinates and ordinals either as JSON numbers or as decimal
// strings ("30.1"); both decode into the same textual form and are parsed
// later, so a bad value fails one record instead of the whole batch.
type Number string

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
	default:
		*n = Number(b)
	}
	return nil
}

// Float parses n as a float64.
func (n Number) Float() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int parses n as a whole number. "2" and "2.0" both yield 2; "2.5",
// anything outside the int32 range, and anything unparseable report false.
func (n Number) Int() (int, bool) {
	if n == "" {
		return 0, false
	}
	f, err := n.Float()
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
