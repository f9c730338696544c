package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/fishlog/internal/domain"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole package.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name so messages match what clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags on s and folds every failure into a
// single domain.ErrValidation.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}

// validateCoordinates enforces that latitude and longitude come as a pair.
func validateCoordinates(lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return fmt.Errorf("%w: latitude and longitude must be provided together", domain.ErrValidation)
	}
	return nil
}

// validateStartInput checks every phase-1 field of a new trip.
func validateStartInput(in domain.StartTripInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return err
	}
	if err := validateSnapshot("weather_data", in.WeatherData, '{'); err != nil {
		return err
	}
	return validateSnapshot("lunar_data", in.LunarData, '[')
}

// validatePatch rejects an empty patch, then checks the supplied fields.
func validatePatch(p domain.TripPatch) error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	return validatePatchFields(p)
}

// validatePatchFields checks each supplied field against its own bound only.
// Coordinates may be patched only together, so a patch can never leave the
// stored pair half-set.
func validatePatchFields(p domain.TripPatch) error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Date != nil && p.Date.IsZero() {
		return fmt.Errorf("%w: date must not be empty", domain.ErrValidation)
	}
	return validateCoordinates(p.Latitude, p.Longitude)
}

// normalizeSnapshot maps a JSON null snapshot to "absent".
func normalizeSnapshot(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}

// validateSnapshot requires raw to be well-formed JSON whose top-level value
// opens with want ('{' for an object, '[' for an array). Absent is fine.
func validateSnapshot(field string, raw json.RawMessage, want byte) error {
	raw = normalizeSnapshot(raw)
	if raw == nil {
		return nil
	}
	if !json.Valid(raw) || raw[0] != want {
		kind := "object"
		if want == '[' {
			kind = "array"
		}
		return fmt.Errorf("%w: %s must be a JSON %s", domain.ErrValidation, field, kind)
	}
	return nil
}
