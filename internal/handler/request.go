package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/fishlog/internal/middleware"
)

// errEmptyBody is returned by decodeJSON when the request has no body.
var errEmptyBody = errors.New("request body is required")

// decodeJSON decodes a single JSON value into dst. Unknown keys are rejected
// so a typo never silently turns into a no-op update. On failure it writes
// the response itself and returns the error; callers just return.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeBody(r, dst); err != nil {
		decodeFailed(w, err)
		return err
	}
	return nil
}

// decodeFailed writes the response for a decodeBody error.
func decodeFailed(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return
	}
	writeValidationError(w, err.Error())
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: unexpected data after JSON value")
	}
	return nil
}

// pathID binds the {id} path parameter. It writes a 400 and returns false
// when the value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil || id < 1 {
		writeValidationError(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// callerID returns the authenticated user id. Routes behind the
// authenticator always have one; the 401 covers misconfigured wiring.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
	}
	return id, ok
}
