package itinerary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/itinerary"
)

func kinds(entries []domain.TimelineEntry) []domain.EntryKind {
	out := make([]domain.EntryKind, len(entries))
	for i, e := range entries {
		out[i] = e.Kind
	}
	return out
}

func TestAssemble_InterleavesMatchedLegs(t *testing.T) {
	a, b, c := at("a", 1, 1), at("b", 2, 2), at("c", 3, 3)
	plan := domain.DayPlan{Stops: []domain.Stop{a, b, c}}
	legs := []domain.Leg{leg("bus", c, b, 0), leg("walking", a, b, 1)}

	got := itinerary.Assemble(plan, legs)

	require.Equal(t, []domain.EntryKind{
		domain.EntryStop, domain.EntryLeg, domain.EntryStop, domain.EntryLeg, domain.EntryStop,
	}, kinds(got))
	assert.Equal(t, "walking", got[1].Leg.Transport)
	assert.Equal(t, 0, got[1].After)
	assert.Equal(t, "bus", got[3].Leg.Transport)
	assert.Equal(t, 1, got[3].After)
	assert.Equal(t, "c", got[4].Stop.Name)
	assert.Equal(t, 2, got[4].After)
}

func TestAssemble_UnconnectedAdjacency(t *testing.T) {
	a, b := at("a", 1, 1), at("b", 2, 2)
	plan := domain.DayPlan{Stops: []domain.Stop{a, b}}

	got := itinerary.Assemble(plan, nil)

	assert.Equal(t, []domain.EntryKind{domain.EntryStop, domain.EntryStop}, kinds(got))
}

func TestAssemble_SuppressesContentFreeLeg(t *testing.T) {
	a, b := at("a", 1, 1), at("b", 2, 2)
	plan := domain.DayPlan{Stops: []domain.Stop{a, b}}
	empty := domain.Leg{Start: a.Position, End: b.Position, Transport: "", TravelTime: ""}

	_, matched := itinerary.FindConnectingLeg([]domain.Leg{empty}, a, b)
	got := itinerary.Assemble(plan, []domain.Leg{empty})

	assert.True(t, matched, "the matcher still finds the leg")
	assert.Equal(t, []domain.EntryKind{domain.EntryStop, domain.EntryStop}, kinds(got))
}

func TestAssemble_SuppressedFirstMatchHidesLaterMatch(t *testing.T) {
	a, b := at("a", 1, 1), at("b", 2, 2)
	plan := domain.DayPlan{Stops: []domain.Stop{a, b}}
	legs := []domain.Leg{
		{Start: a.Position, End: b.Position},
		leg("walking", a, b, 1),
	}

	got := itinerary.Assemble(plan, legs)

	assert.Len(t, got, 2, "first match wins even when it is not displayable")
}

func TestAssemble_TravelTimeAloneIsDisplayable(t *testing.T) {
	a, b := at("a", 1, 1), at("b", 2, 2)
	plan := domain.DayPlan{Stops: []domain.Stop{a, b}}
	legs := []domain.Leg{{Start: a.Position, End: b.Position, TravelTime: "5 min"}}

	got := itinerary.Assemble(plan, legs)

	require.Len(t, got, 3)
	assert.Equal(t, "5 min", got[1].Leg.TravelTime)
}

func TestAssemble_Completeness(t *testing.T) {
	stops := []domain.Stop{at("a", 1, 1), at("b", 2, 2), at("c", 3, 3), at("d", 4, 4), at("e", 5, 5)}
	var legs []domain.Leg
	for i := 0; i < len(stops)-1; i++ {
		legs = append(legs, leg("walking", stops[i], stops[i+1], i))
	}
	// Extra legs between non-adjacent stops must never appear.
	legs = append(legs, leg("bus", stops[0], stops[4], 10))

	got := itinerary.Assemble(domain.DayPlan{Stops: stops}, legs)

	var stopNames []string
	legCount := 0
	for _, e := range got {
		switch e.Kind {
		case domain.EntryStop:
			stopNames = append(stopNames, e.Stop.Name)
		case domain.EntryLeg:
			legCount++
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, stopNames)
	assert.Equal(t, len(stops)-1, legCount)
}

func TestAssemble_EmptyPlan(t *testing.T) {
	got := itinerary.Assemble(domain.DayPlan{}, nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAssemble_Deterministic(t *testing.T) {
	a, b, c := at("a", 1, 1), at("b", 2, 2), at("c", 3, 3)
	plan := domain.DayPlan{Stops: []domain.Stop{a, b, c}}
	legs := []domain.Leg{leg("walking", a, b, 0), leg("bus", b, c, 1)}

	assert.Equal(t, itinerary.Assemble(plan, legs), itinerary.Assemble(plan, legs))
}
