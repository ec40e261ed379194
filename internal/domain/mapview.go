package domain

// MapView is the set of drawing commands sent to the map client for one
// batch: add every marker, add every line, then fit the view to Bounds once.
type MapView struct {
	Markers []Marker   `json:"markers"`
	Lines   []Polyline `json:"lines"`
	Bounds  *Bounds    `json:"bounds,omitempty"` // nil when no stop has a known location
}

// Marker is an "add marker" command.
type Marker struct {
	Position Point  `json:"position"`
	Title    string `json:"title"`
	Text     string `json:"text,omitempty"`
	Timed    bool   `json:"timed"`
}

// Polyline is an "add line" command with style hints.
type Polyline struct {
	Start          Point   `json:"start"`
	End            Point   `json:"end"`
	Label          string  `json:"label,omitempty"`
	Color          string  `json:"color"`
	Dashed         bool    `json:"dashed"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// Bounds is a latitude/longitude rectangle in decimal degrees.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}
