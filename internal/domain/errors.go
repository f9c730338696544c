package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, value out of range).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when a credential is missing, malformed,
// expired, or does not match a known user. Handlers map it to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when the caller is authenticated but does not own
// the resource they are trying to read or change. Handlers map it to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a request would violate a state invariant,
// such as starting a second active trip or completing a trip twice.
// Handlers map it to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrDependency wraps failures of external collaborators (weather and lunar
// providers). Handlers map it to HTTP 502.
var ErrDependency = errors.New("dependency error")
