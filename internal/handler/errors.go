package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/middleware"
)

// statusClientClosedRequest is the non-standard status recorded when the
// client went away before the answer was ready.
const statusClientClosedRequest = 499

// Error codes carried in ErrorResponse.Error.Code.
const (
	codeNotFound    = "not_found"
	codeValidation  = "validation_error"
	codeStale       = "stale_result"
	codeEmptyResult = "empty_result"
	codeUpstream    = "upstream_error"
	codeInternal    = "internal_error"
	codeBadRequest  = "bad_request"
	codeCanceled    = "client_closed_request"
	codeTimeout     = "timeout"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the machine-readable code and human-readable message of an error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// fail maps a service error to its HTTP status. Sentinels from the domain
// package are the only errors that reach the client verbatim; anything else
// is logged and answered with 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		middleware.TooLarge(w, tooLarge.Limit)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "session not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrStale):
		writeError(w, http.StatusConflict, codeStale, "a newer prompt or a reset replaced this request")
	case errors.Is(err, domain.ErrEmptyResult):
		writeError(w, http.StatusUnprocessableEntity, codeEmptyResult,
			"the model did not return any usable locations, try rephrasing the request")
	case errors.Is(err, context.Canceled):
		s.logger.InfoContext(r.Context(), "request canceled by client", "error", err)
		writeError(w, statusClientClosedRequest, codeCanceled, "the request was canceled")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.WarnContext(r.Context(), "deadline exceeded", "error", err)
		writeError(w, http.StatusGatewayTimeout, codeTimeout, "the request took too long, try again shortly")
	case errors.Is(err, domain.ErrUpstream):
		s.logger.WarnContext(r.Context(), "upstream failure", "error", err)
		writeError(w, http.StatusBadGateway, codeUpstream, "an upstream service is unavailable, try again shortly")
	default:
		s.logger.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// unwrapMessage extracts the human-readable part that follows a sentinel in a
// wrapped error chain.
// e.g. "service.PlannerService.Plan: validation error: prompt is required" → "prompt is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

// requestError answers a request rejected before reaching the service layer
// (e.g. a malformed body or an unsupported query value).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, codeValidation, message)
}

// badBody answers a body that failed to decode: 413 when the size limit was
// hit, 422 otherwise.
func (s *Server) badBody(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.fail(w, r, err)
		return
	}
	requestError(w, "invalid request body: "+err.Error())
}

// paramError answers a path or query parameter that failed to bind, the way
// generated servers answer an InvalidParamFormatError.
func paramError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
}
