package itinerary

import "github.com/pkordes/dayplanner/internal/domain"

// Assemble interleaves the DayPlan stops with the legs that connect them:
// Stop[0], Leg?, Stop[1], Leg?, ..., Stop[n-1].
// A leg is emitted only when it has a transport or a travel time; a matched
// leg with neither is suppressed. The result depends only on the inputs.
func Assemble(plan domain.DayPlan, legs []domain.Leg) []domain.TimelineEntry {
	stops := plan.Stops
	entries := make([]domain.TimelineEntry, 0, 2*len(stops))
	for i := range stops {
		stop := stops[i]
		entries = append(entries, domain.TimelineEntry{Kind: domain.EntryStop, Stop: &stop, After: i})

		if i == len(stops)-1 {
			break
		}
		leg, ok := FindConnectingLeg(legs, stops[i], stops[i+1])
		if !ok || !leg.Displayable() {
			continue
		}
		entries = append(entries, domain.TimelineEntry{Kind: domain.EntryLeg, Leg: &leg, After: i})
	}
	return entries
}
