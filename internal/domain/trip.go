// Package domain contains the core data types for the fishing logbook.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"encoding/json"
	"time"
)

// Species is a target fish species.
type Species string

const (
	SpeciesPerch  Species = "perch"
	SpeciesPike   Species = "pike"
	SpeciesZander Species = "zander"
)

// Valid reports whether s is one of the supported target species.
func (s Species) Valid() bool {
	switch s {
	case SpeciesPerch, SpeciesPike, SpeciesZander:
		return true
	}
	return false
}

// TripStatus is the lifecycle state of a trip.
// The only transition is TripStatusActive → TripStatusCompleted.
type TripStatus string

const (
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
)

// Trip is a single fishing outing and the central aggregate of the system.
// Catches and buddy associations belong to a trip.
//
// Phase-1 fields are captured when the trip starts. Phase-2 fields stay nil
// until the angler fills them in, either through auto-saved partial updates
// or on completion.
type Trip struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	TargetSpecies Species    `json:"target_species"`
	Date          time.Time  `json:"date"`
	Location      *string    `json:"location,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	Status        TripStatus `json:"status"`

	NumberOfPersons int             `json:"number_of_persons"`
	WeatherData     json.RawMessage `json:"weather_data,omitempty"`
	LunarData       json.RawMessage `json:"lunar_data,omitempty"`

	HoursFished         *float64 `json:"hours_fished,omitempty"`
	NumberOfFish        *int     `json:"number_of_fish,omitempty"`
	PerchOver40         *int     `json:"perch_over_40,omitempty"`
	NumberOfBonusPike   *int     `json:"number_of_bonus_pike,omitempty"`
	NumberOfBonusZander *int     `json:"number_of_bonus_zander,omitempty"`
	NumberOfBonusPerch  *int     `json:"number_of_bonus_perch,omitempty"`
	WaterTemperature    *float64 `json:"water_temperature,omitempty"`
	BagTotal            *float64 `json:"bag_total,omitempty"`
	Comment             *string  `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StartTripInput carries the phase-1 fields needed to start a trip.
// Latitude and Longitude must be both set or both nil.
type StartTripInput struct {
	TargetSpecies   Species         `json:"target_species" validate:"required,oneof=perch pike zander"`
	Date            time.Time       `json:"date"`
	Location        *string         `json:"location" validate:"omitempty,max=255"`
	Latitude        *float64        `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64        `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	NumberOfPersons int             `json:"number_of_persons" validate:"gte=1,lte=2147483647"`
	WeatherData     json.RawMessage `json:"weather_data"`
	LunarData       json.RawMessage `json:"lunar_data"`
}

// TripPatch is the whitelist of fields a partial update may touch.
// The validate tags hold each field's own bound, never wider than the column
// that stores it; the json tags only name fields in validation messages.
// A nil field means "leave the stored value alone"; there is no way to clear
// a field back to NULL. Weather and lunar snapshots, status, and ownership are
// deliberately absent.
type TripPatch struct {
	TargetSpecies   *Species   `json:"target_species" validate:"omitempty,oneof=perch pike zander"`
	Date            *time.Time `json:"date"`
	Location        *string    `json:"location" validate:"omitempty,max=255"`
	Latitude        *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	NumberOfPersons *int       `json:"number_of_persons" validate:"omitempty,gte=1,lte=2147483647"`

	HoursFished         *float64 `json:"hours_fished" validate:"omitempty,gte=0,lte=24"`
	NumberOfFish        *int     `json:"number_of_fish" validate:"omitempty,gte=0,lte=2147483647"`
	PerchOver40         *int     `json:"perch_over_40" validate:"omitempty,gte=0,lte=2147483647"`
	NumberOfBonusPike   *int     `json:"number_of_bonus_pike" validate:"omitempty,gte=0,lte=2147483647"`
	NumberOfBonusZander *int     `json:"number_of_bonus_zander" validate:"omitempty,gte=0,lte=2147483647"`
	NumberOfBonusPerch  *int     `json:"number_of_bonus_perch" validate:"omitempty,gte=0,lte=2147483647"`
	WaterTemperature    *float64 `json:"water_temperature" validate:"omitempty,gte=-3,lte=35"`
	BagTotal            *float64 `json:"bag_total" validate:"omitempty,gte=0,lte=999999.99"`
	Comment             *string  `json:"comment" validate:"omitempty,max=1000"`
}

// IsEmpty reports whether the patch supplies no fields at all.
func (p TripPatch) IsEmpty() bool {
	return p == TripPatch{}
}

// Apply returns a copy of t with every supplied field of p written over it.
// It mirrors the COALESCE semantics the repo uses in SQL.
func (p TripPatch) Apply(t Trip) Trip {
	if p.TargetSpecies != nil {
		t.TargetSpecies = *p.TargetSpecies
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.NumberOfPersons != nil {
		t.NumberOfPersons = *p.NumberOfPersons
	}
	t.Location = coalesce(p.Location, t.Location)
	t.Latitude = coalesce(p.Latitude, t.Latitude)
	t.Longitude = coalesce(p.Longitude, t.Longitude)
	t.HoursFished = coalesce(p.HoursFished, t.HoursFished)
	t.NumberOfFish = coalesce(p.NumberOfFish, t.NumberOfFish)
	t.PerchOver40 = coalesce(p.PerchOver40, t.PerchOver40)
	t.NumberOfBonusPike = coalesce(p.NumberOfBonusPike, t.NumberOfBonusPike)
	t.NumberOfBonusZander = coalesce(p.NumberOfBonusZander, t.NumberOfBonusZander)
	t.NumberOfBonusPerch = coalesce(p.NumberOfBonusPerch, t.NumberOfBonusPerch)
	t.WaterTemperature = coalesce(p.WaterTemperature, t.WaterTemperature)
	t.BagTotal = coalesce(p.BagTotal, t.BagTotal)
	t.Comment = coalesce(p.Comment, t.Comment)
	return t
}

func coalesce[T any](v, fallback *T) *T {
	if v != nil {
		return v
	}
	return fallback
}
