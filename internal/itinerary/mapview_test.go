package itinerary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/itinerary"
)

func TestBuildMapView_MarkersLinesAndBounds(t *testing.T) {
	park := domain.Stop{Name: "Park", Position: domain.Point{Lat: 30.1, Lng: -97.1}, Time: "09:00", Duration: "1 hour"}
	vet := domain.Stop{Name: "Vet", Position: domain.Point{Lat: 30.3, Lng: -97.3}}
	walk := domain.Leg{Start: park.Position, End: vet.Position, Transport: "Walking", TravelTime: "20 minutes"}

	view := itinerary.BuildMapView([]domain.Stop{park, vet}, []domain.Leg{walk})

	require.Len(t, view.Markers, 2)
	assert.Equal(t, "Park", view.Markers[0].Title)
	assert.Equal(t, "09:00 · 1 hour", view.Markers[0].Text)
	assert.True(t, view.Markers[0].Timed)
	assert.False(t, view.Markers[1].Timed)

	require.Len(t, view.Lines, 1)
	line := view.Lines[0]
	assert.Equal(t, "Walking · 20 minutes", line.Label)
	assert.True(t, line.Dashed, "walking legs are dashed regardless of case")
	assert.Equal(t, "#2a9d8f", line.Color)
	// 0.2 degrees of latitude and longitude near Austin is roughly 29 km.
	assert.InDelta(t, 29000, line.DistanceMeters, 1500)

	require.NotNil(t, view.Bounds)
	assert.InDelta(t, 30.1, view.Bounds.South, 1e-9)
	assert.InDelta(t, 30.3, view.Bounds.North, 1e-9)
}

func TestBuildMapView_UnknownTransportUsesDefaultStyle(t *testing.T) {
	l := domain.Leg{Start: domain.Point{Lat: 1, Lng: 1}, End: domain.Point{Lat: 1, Lng: 2}, Transport: "hovercraft"}

	view := itinerary.BuildMapView(nil, []domain.Leg{l})

	require.Len(t, view.Lines, 1)
	assert.Equal(t, "#6c757d", view.Lines[0].Color)
	assert.False(t, view.Lines[0].Dashed)
	assert.Empty(t, view.Markers)
	assert.NotNil(t, view.Markers)
}

func TestBuildMapView_Empty(t *testing.T) {
	view := itinerary.BuildMapView(nil, nil)

	assert.Nil(t, view.Bounds)
}
