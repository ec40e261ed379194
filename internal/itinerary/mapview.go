package itinerary

import (
	"strings"

	"github.com/golang/geo/s2"

	"github.com/pkordes/dayplanner/internal/domain"
)

// earthRadiusMeters is the mean Earth radius used for leg lengths.
const earthRadiusMeters = 6371000.0

// transportStyle is the line colour and dash pattern for a transport mode.
type transportStyle struct {
	color  string
	dashed bool
}

var (
	defaultStyle    = transportStyle{color: "#6c757d"}
	transportStyles = map[string]transportStyle{
		"walking": {color: "#2a9d8f", dashed: true},
		"walk":    {color: "#2a9d8f", dashed: true},
		"cycling": {color: "#8ab17d", dashed: true},
		"bike":    {color: "#8ab17d", dashed: true},
		"driving": {color: "#264653"},
		"car":     {color: "#264653"},
		"taxi":    {color: "#264653"},
		"bus":     {color: "#e76f51"},
		"transit": {color: "#e76f51"},
		"train":   {color: "#e76f51"},
		"subway":  {color: "#e76f51"},
		"ferry":   {color: "#457b9d"},
	}
)

// BuildMapView returns the drawing commands for one batch: a marker per stop
// (timed or not), a line per leg, and the bounds of every known location.
func BuildMapView(stops []domain.Stop, legs []domain.Leg) domain.MapView {
	view := domain.MapView{
		Markers: make([]domain.Marker, 0, len(stops)),
		Lines:   make([]domain.Polyline, 0, len(legs)),
	}

	points := make([]domain.Point, 0, len(stops)+2*len(legs))
	for _, s := range stops {
		view.Markers = append(view.Markers, domain.Marker{
			Position: s.Position,
			Title:    s.Name,
			Text:     markerText(s),
			Timed:    s.Timed(),
		})
		points = append(points, s.Position)
	}
	for _, l := range legs {
		style := styleFor(l.Transport)
		view.Lines = append(view.Lines, domain.Polyline{
			Start:          l.Start,
			End:            l.End,
			Label:          legLabel(l),
			Color:          style.color,
			Dashed:         style.dashed,
			DistanceMeters: distanceMeters(l.Start, l.End),
		})
		points = append(points, l.Start, l.End)
	}

	view.Bounds = Bounds(points)
	return view
}

func markerText(s domain.Stop) string {
	var parts []string
	if s.Time != "" {
		parts = append(parts, s.Time)
	}
	if s.Duration != "" {
		parts = append(parts, s.Duration)
	}
	if s.Description != "" {
		parts = append(parts, s.Description)
	}
	return strings.Join(parts, " · ")
}

// legLabel is the text shown for a leg, on the map and in the timeline.
func legLabel(l domain.Leg) string {
	switch {
	case l.Transport != "" && l.TravelTime != "":
		return l.Transport + " · " + l.TravelTime
	case l.Transport != "":
		return l.Transport
	default:
		return l.TravelTime
	}
}

func styleFor(transport string) transportStyle {
	if s, ok := transportStyles[strings.ToLower(strings.TrimSpace(transport))]; ok {
		return s
	}
	return defaultStyle
}

func distanceMeters(p, q domain.Point) float64 {
	if !p.Valid() || !q.Valid() {
		return 0
	}
	a := s2.LatLngFromDegrees(p.Lat, p.Lng)
	b := s2.LatLngFromDegrees(q.Lat, q.Lng)
	return a.Distance(b).Radians() * earthRadiusMeters
}
