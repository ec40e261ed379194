package domain

// Stop is a single place in the itinerary, derived from a "location" record.
// Name is the identity key within one session. Time is the display text as
// the model sent it; TimeKey is its zero-padded "HH:MM" form used for sorting
// (or the raw text when it could not be parsed). A Stop without a Time is shown
// on the map but never enters the DayPlan.
type Stop struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Position    Point  `json:"position"`
	Time        string `json:"time,omitempty"`
	TimeKey     string `json:"-"`
	Duration    string `json:"duration,omitempty"`
	Sequence    *int   `json:"sequence,omitempty"` // 1-based ordering hint
	Arrival     int    `json:"arrival"`            // position in the batch the stop arrived in
}

// Timed reports whether the stop carries a time and so belongs in the DayPlan.
func (s Stop) Timed() bool {
	return s.Time != ""
}

// Leg is a travel connection derived from a "line" record.
// It is directed in the data but undirected for matching.
type Leg struct {
	Name       string `json:"name,omitempty"`
	Start      Point  `json:"start"`
	End        Point  `json:"end"`
	Transport  string `json:"transport,omitempty"`
	TravelTime string `json:"travelTime,omitempty"`
	Arrival    int    `json:"arrival"`
}

// Displayable reports whether the leg has anything worth showing.
// Legs with neither transport nor travel time are matched but not displayed.
func (l Leg) Displayable() bool {
	return l.Transport != "" || l.TravelTime != ""
}

// DayPlan is the ordered sequence of timed stops for one session.
type DayPlan struct {
	Stops []Stop `json:"stops"`
}

// EntryKind discriminates TimelineEntry values.
type EntryKind string

const (
	EntryStop EntryKind = "stop"
	EntryLeg  EntryKind = "leg"
)

// TimelineEntry is one renderable unit of the timeline: either a stop or the
// leg travelled after the stop at DayPlan index After.
type TimelineEntry struct {
	Kind  EntryKind `json:"kind"`
	Stop  *Stop     `json:"stop,omitempty"`
	Leg   *Leg      `json:"leg,omitempty"`
	After int       `json:"after"` // DayPlan index of the stop (or the stop preceding the leg)
}

// Warning describes a record that was dropped or degraded during ingestion.
// Record is the position of the offending record in the batch.
type Warning struct {
	Record  int    `json:"record"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Warning kinds.
const (
	WarnMalformed   = "malformed"
	WarnMissingName = "missing_name"
	WarnCoordinate  = "invalid_coordinate"
	WarnDuplicate   = "duplicate"
	WarnUnknownKind = "unknown_kind"
	WarnTimeFormat  = "time_format"
)

// Itinerary is everything derived from one batch of model records.
// It is produced in one piece and never mutated afterwards.
type Itinerary struct {
	Stops    []Stop          `json:"stops"` // every accepted stop, in arrival order
	Legs     []Leg           `json:"legs"`  // every accepted leg, in arrival order
	Plan     DayPlan         `json:"plan"`
	Timeline []TimelineEntry `json:"timeline"`
	Map      MapView         `json:"map"`
	Warnings []Warning       `json:"warnings"`
}

// Empty reports whether no usable record survived filtering.
func (it Itinerary) Empty() bool {
	return len(it.Stops) == 0 && len(it.Legs) == 0
}
