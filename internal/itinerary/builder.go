package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pkordes/dayplanner/internal/domain"
)

var (
	errMissingName   = fmt.Errorf("%w: name is required", domain.ErrValidation)
	errBadCoordinate = fmt.Errorf("%w: coordinate is not a number", domain.ErrValidation)
	errDuplicate     = fmt.Errorf("%w: duplicate stop", domain.ErrValidation)
)

// clockLayouts are the time-of-day spellings accepted from the model.
// Everything that parses is normalised to zero-padded 24-hour "HH:MM".
var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// Builder accumulates the records of one batch into stops and legs.
// A Builder is single-use: create one per batch.
type Builder struct {
	registry *Registry
	stops    []domain.Stop
	legs     []domain.Leg
	names    map[string]struct{}
	warnings []domain.Warning
	record   int // batch index of the record being processed, for warnings
}

// NewBuilder returns an empty Builder that registers coordinates in reg.
func NewBuilder(reg *Registry) *Builder {
	return &Builder{registry: reg, names: make(map[string]struct{})}
}

// Ingest decodes and adds every record in arrival order.
// A record that cannot be used is skipped and reported as a warning; Ingest
// itself never fails.
func (b *Builder) Ingest(records []domain.Record) {
	for i, rec := range records {
		b.record = i
		switch rec.Kind {
		case domain.RecordLocation:
			var args domain.LocationArgs
			if err := json.Unmarshal(rec.Args, &args); err != nil {
				b.warn(domain.WarnMalformed, "location record: %v", err)
				continue
			}
			if _, err := b.AddStop(args); err != nil {
				b.warn(warningKind(err), "location %q: %v", args.Name, err)
			}
		case domain.RecordLine:
			var args domain.LineArgs
			if err := json.Unmarshal(rec.Args, &args); err != nil {
				b.warn(domain.WarnMalformed, "line record: %v", err)
				continue
			}
			if _, err := b.AddLeg(args); err != nil {
				b.warn(warningKind(err), "line %q: %v", args.Name, err)
			}
		default:
			b.warn(domain.WarnUnknownKind, "unknown record kind %q", rec.Kind)
		}
	}
}

// AddStop converts a location record into a Stop and keeps it.
// Returns a domain.ErrValidation-wrapped error, and keeps nothing, when the
// name is missing, a coordinate does not parse, or a stop with the same name
// already exists. A stop without a time is kept for the map but will not
// enter the DayPlan.
func (b *Builder) AddStop(args domain.LocationArgs) (domain.Stop, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return domain.Stop{}, errMissingName
	}
	if _, dup := b.names[name]; dup {
		return domain.Stop{}, fmt.Errorf("%w %q", errDuplicate, name)
	}
	pos := b.registry.Register(args.Lat, args.Lng)
	if !pos.Valid() {
		return domain.Stop{}, fmt.Errorf("%w (lat=%q lng=%q)", errBadCoordinate, args.Lat, args.Lng)
	}

	stop := domain.Stop{
		Name:        name,
		Description: strings.TrimSpace(args.Description),
		Position:    pos,
		Time:        strings.TrimSpace(args.Time),
		Duration:    strings.TrimSpace(args.Duration),
		Arrival:     len(b.stops),
	}
	if stop.Timed() {
		key, ok := TimeKey(stop.Time)
		if !ok {
			b.warn(domain.WarnTimeFormat, "location %q: time %q is not HH:MM, sorting it as text", name, stop.Time)
		}
		stop.TimeKey = key
	}
	if args.Sequence != "" {
		if seq, ok := args.Sequence.Int(); ok {
			stop.Sequence = &seq
		} else {
			b.warn(domain.WarnMalformed, "location %q: ignoring non-integer sequence %q", name, args.Sequence)
		}
	}

	b.names[name] = struct{}{}
	b.stops = append(b.stops, stop)
	return stop, nil
}

// AddLeg converts a line record into a Leg and keeps it.
// Returns a domain.ErrValidation-wrapped error when either endpoint does not
// parse. Duplicate legs are kept; the matcher picks the first.
func (b *Builder) AddLeg(args domain.LineArgs) (domain.Leg, error) {
	start := b.registry.Register(args.Start.Lat, args.Start.Lng)
	end := b.registry.Register(args.End.Lat, args.End.Lng)
	if !start.Valid() || !end.Valid() {
		return domain.Leg{}, fmt.Errorf("%w (start=%q,%q end=%q,%q)", errBadCoordinate,
			args.Start.Lat, args.Start.Lng, args.End.Lat, args.End.Lng)
	}

	leg := domain.Leg{
		Name:       strings.TrimSpace(args.Name),
		Start:      start,
		End:        end,
		Transport:  strings.TrimSpace(args.Transport),
		TravelTime: strings.TrimSpace(args.TravelTime),
		Arrival:    len(b.legs),
	}
	b.legs = append(b.legs, leg)
	return leg, nil
}

// Stops returns every accepted stop in arrival order. Never nil.
func (b *Builder) Stops() []domain.Stop {
	return append([]domain.Stop{}, b.stops...)
}

// Legs returns every accepted leg in arrival order.
func (b *Builder) Legs() []domain.Leg {
	return append([]domain.Leg{}, b.legs...)
}

// Warnings returns the warnings collected so far.
func (b *Builder) Warnings() []domain.Warning {
	return append([]domain.Warning{}, b.warnings...)
}

func (b *Builder) warn(kind, format string, args ...any) {
	b.warnings = append(b.warnings, domain.Warning{
		Record:  b.record,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// BuildDayPlan returns the timed stops ordered by (sequence, time).
// Untimed stops are left out. The input slice is not modified.
func BuildDayPlan(stops []domain.Stop) domain.DayPlan {
	timed := make([]domain.Stop, 0, len(stops))
	for _, s := range stops {
		if s.Timed() {
			timed = append(timed, s)
		}
	}
	return domain.DayPlan{Stops: SortStops(timed)}
}

// SortStops stable-sorts a copy of stops ascending by sequence, then by time
// key. A missing sequence sorts after every numeric sequence and a missing
// time after every present time, so stops with neither come last. Equal keys
// keep their input order.
func SortStops(stops []domain.Stop) []domain.Stop {
	out := slices.Clone(stops)
	slices.SortStableFunc(out, compareStops)
	return out
}

func compareStops(a, b domain.Stop) int {
	switch {
	case a.Sequence != nil && b.Sequence == nil:
		return -1
	case a.Sequence == nil && b.Sequence != nil:
		return 1
	case a.Sequence != nil && *a.Sequence != *b.Sequence:
		if *a.Sequence < *b.Sequence {
			return -1
		}
		return 1
	}

	ak, bk := a.TimeKey, b.TimeKey
	if ak == "" {
		ak = a.Time
	}
	if bk == "" {
		bk = b.Time
	}
	switch {
	case ak != "" && bk == "":
		return -1
	case ak == "" && bk != "":
		return 1
	}
	return strings.Compare(ak, bk)
}

// TimeKey normalises a time of day to zero-padded 24-hour "HH:MM".
// When s matches none of the accepted layouts it is returned trimmed with
// ok=false, and it then sorts by plain text comparison.
func TimeKey(s string) (key string, ok bool) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format("15:04"), true
		}
	}
	return s, false
}

func warningKind(err error) string {
	switch {
	case errors.Is(err, errMissingName):
		return domain.WarnMissingName
	case errors.Is(err, errBadCoordinate):
		return domain.WarnCoordinate
	case errors.Is(err, errDuplicate):
		return domain.WarnDuplicate
	default:
		return domain.WarnMalformed
	}
}
