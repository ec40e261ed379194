package itinerary

import "github.com/pkordes/dayplanner/internal/domain"

// Options tunes how a batch is reconciled.
type Options struct {
	// Precision is the number of decimal digits coordinates are rounded to
	// before matching. Negative disables rounding.
	Precision int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{Precision: DefaultPrecision}
}

// Build reconciles one complete batch of model records into an Itinerary.
// It must only be called once the whole batch has arrived. Build never fails:
// unusable records become warnings, and a batch with nothing usable yields an
// itinerary whose Empty method reports true.
func Build(records []domain.Record, opts Options) domain.Itinerary {
	b := NewBuilder(NewRegistry(opts.Precision))
	b.Ingest(records)

	stops, legs := b.Stops(), b.Legs()
	plan := BuildDayPlan(stops)

	return domain.Itinerary{
		Stops:    stops,
		Legs:     legs,
		Plan:     plan,
		Timeline: Assemble(plan, legs),
		Map:      BuildMapView(stops, legs),
		Warnings: b.Warnings(),
	}
}
