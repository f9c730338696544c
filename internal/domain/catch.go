package domain

import "time"

// Catch is one fish logged against a trip.
// Catches are owned by their trip and removed with it. Measurements are
// stored with two decimals, so anything that would round to zero is rejected.
type Catch struct {
	ID          int64     `json:"id"`
	TripID      int64     `json:"trip_id"`
	Species     string    `json:"species" validate:"required,max=100"`
	WeightGrams float64   `json:"weight_grams" validate:"gte=0.01,lte=99999999.99"`
	LengthCm    float64   `json:"length_cm" validate:"gte=0.01,lte=99999999.99"`
	DepthCm     *float64  `json:"depth_cm,omitempty" validate:"omitempty,gte=0,lte=99999999.99"`
	Latitude    *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	CaughtAt    time.Time `json:"caught_at"`
	CreatedAt   time.Time `json:"created_at"`
}
