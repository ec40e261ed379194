package domain

import "errors"

// ErrNotFound is returned when the requested session (or cache entry) does
// not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule (empty prompt,
// record without a name, unparseable coordinate, bad snapshot image).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrStale is returned when a planning result arrives for a session
// generation that has already been superseded by a newer prompt or a reset.
// The result is discarded. Handlers should map this to HTTP 409 Conflict.
var ErrStale = errors.New("stale result")

// ErrEmptyResult is returned when the model answered but none of its records
// survived filtering. It is a user-facing condition, not a crash.
// Handlers should map this to HTTP 422 with a readable message.
var ErrEmptyResult = errors.New("no usable locations")

// ErrUpstream is returned when a collaborator (the model, the object store)
// is unavailable or answered with an unexpected status.
// Handlers should map this to HTTP 502 Bad Gateway.
var ErrUpstream = errors.New("upstream unavailable")
