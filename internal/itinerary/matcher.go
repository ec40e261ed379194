package itinerary

import "github.com/pkordes/dayplanner/internal/domain"

// FindConnectingLeg returns the first leg, in arrival order, whose endpoints
// are exactly {a.Position, b.Position} in either direction.
// No match and several matches are both normal: the first reports false, the
// second resolves to the earliest leg.
func FindConnectingLeg(legs []domain.Leg, a, b domain.Stop) (domain.Leg, bool) {
	for _, leg := range legs {
		if connects(leg, a.Position, b.Position) {
			return leg, true
		}
	}
	return domain.Leg{}, false
}

func connects(leg domain.Leg, p, q domain.Point) bool {
	return (Equal(leg.Start, p) && Equal(leg.End, q)) ||
		(Equal(leg.Start, q) && Equal(leg.End, p))
}
