package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ExportFormat is the value of the export endpoint's ?format= parameter.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatJSON ExportFormat = "json"
)

// ExportParams are the query parameters of POST /sessions/{sessionId}/export.
type ExportParams struct {
	Format *ExportFormat `form:"format,omitempty" json:"format,omitempty"`
}

// sessionID binds the {sessionId} path parameter the way generated
// oapi-codegen servers bind a uuid path parameter.
func sessionID(r *http.Request) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "sessionId", chi.URLParam(r, "sessionId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, fmt.Errorf("invalid format for parameter sessionId: %w", err)
	}
	return id, nil
}

// exportParams binds and validates the export query string.
func exportParams(r *http.Request) (ExportParams, error) {
	var params ExportParams
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format); err != nil {
		return params, fmt.Errorf("invalid format for parameter format: %w", err)
	}
	if params.Format == nil {
		f := FormatPDF
		params.Format = &f
	}
	switch *params.Format {
	case FormatPDF, FormatJSON:
		return params, nil
	default:
		return params, fmt.Errorf("format must be %q or %q", FormatPDF, FormatJSON)
	}
}

// decodeBody decodes a JSON request body into dst. An empty body is accepted
// only when optional is true.
func decodeBody(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	switch {
	case errors.Is(err, io.EOF):
		if optional {
			return nil
		}
		return errors.New("request body is required")
	case err != nil:
		return err
	}
	return nil
}
