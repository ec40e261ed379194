package handler

import (
	"net/http"
	"strconv"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/layout"
)

// exportRequest is the optional body of POST /sessions/{sessionId}/export.
// Snapshot arrives base64 encoded, which encoding/json decodes into bytes.
type exportRequest struct {
	Title    string `json:"title"`
	Snapshot []byte `json:"snapshot"`
}

// exportUploaded is the 201 body when the document went to object storage.
type exportUploaded struct {
	URL   string `json:"url"`
	Pages int    `json:"pages"`
}

// layoutResponse is the ?format=json body.
type layoutResponse struct {
	Pages        int                  `json:"pages"`
	Instructions []layout.Instruction `json:"instructions"`
}

// ExportItinerary handles POST /sessions/{sessionId}/export.
// ?format=pdf (the default) renders the document: it is returned inline, or
// as a 201 with its URL when object storage is configured. ?format=json
// returns the placement instructions instead.
func (s *Server) ExportItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		paramError(w, err)
		return
	}
	params, err := exportParams(r)
	if err != nil {
		paramError(w, err)
		return
	}
	var body exportRequest
	if err := decodeBody(r, &body, true); err != nil {
		s.badBody(w, r, err)
		return
	}
	req := domain.ExportRequest{Title: body.Title, Snapshot: body.Snapshot}

	if *params.Format == FormatJSON {
		instrs, _, err := s.exporter.Layout(r.Context(), id, req)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		pages := 0
		for _, in := range instrs {
			if in.Kind == layout.KindPage {
				pages++
			}
		}
		writeJSON(w, http.StatusOK, layoutResponse{Pages: pages, Instructions: instrs})
		return
	}

	res, err := s.exporter.Export(r.Context(), id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res.URL != "" {
		w.Header().Set("Location", res.URL)
		writeJSON(w, http.StatusCreated, exportUploaded{URL: res.URL, Pages: res.Pages})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Header().Set("X-Export-Pages", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PDF)
}
