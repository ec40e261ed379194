package domain

// ExportRequest carries everything the export pipeline needs besides the
// session itinerary. Snapshot is the map bitmap produced by the browser; it
// must be fully available before document layout begins, and may be empty
// when the client could not render the map.
type ExportRequest struct {
	Title    string
	Snapshot []byte
}

// ExportResult is a rendered itinerary document.
// URL is set only when the document was uploaded to an object store; PDF is
// always populated.
type ExportResult struct {
	PDF   []byte
	URL   string
	Pages int
}
