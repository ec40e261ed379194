package domain

import "encoding/json"

// RecordKind names the model function that produced a record.
type RecordKind string

const (
	// RecordLocation is a place to visit.
	RecordLocation RecordKind = "location"
	// RecordLine is a travel connection between two points.
	RecordLine RecordKind = "line"
)

// Record is one function call returned by the model.
// Args is kept as raw JSON; it is decoded per record during ingestion so that
// a malformed record is skipped with a warning rather than failing the batch.
type Record struct {
	Kind RecordKind      `json:"kind"`
	Args json.RawMessage `json:"args"`
}

// LocationArgs is the argument object of a "location" function call.
// Only Name, Lat and Lng are required; everything else may be absent.
type LocationArgs struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Lat         Number `json:"lat"`
	Lng         Number `json:"lng"`
	Time        string `json:"time"`
	Duration    string `json:"duration"`
	Sequence    Number `json:"sequence"`
}

// Coordinate is the {lat,lng} object nested in a "line" function call.
type Coordinate struct {
	Lat Number `json:"lat"`
	Lng Number `json:"lng"`
}

// LineArgs is the argument object of a "line" function call.
type LineArgs struct {
	Name       string     `json:"name"`
	Start      Coordinate `json:"start"`
	End        Coordinate `json:"end"`
	Transport  string     `json:"transport"`
	TravelTime string     `json:"travelTime"`
}
