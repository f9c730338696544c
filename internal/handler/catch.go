package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/fishlog/internal/domain"
)

// catchRequest is the body of POST /trips/{id}/catches.
// caught_at is RFC 3339 and its offset decides the calendar date.
type catchRequest struct {
	Species     string    `json:"species"`
	WeightGrams float64   `json:"weight_grams"`
	LengthCm    float64   `json:"length_cm"`
	DepthCm     *float64  `json:"depth_cm"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CaughtAt    time.Time `json:"caught_at"`
}

// AddCatch handles POST /trips/{id}/catches.
func (s *Server) AddCatch(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req catchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	created, err := s.catches.AddCatch(r.Context(), tripID, requesterID, domain.Catch{
		Species:     req.Species,
		WeightGrams: req.WeightGrams,
		LengthCm:    req.LengthCm,
		DepthCm:     req.DepthCm,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CaughtAt:    req.CaughtAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListCatches handles GET /trips/{id}/catches.
func (s *Server) ListCatches(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	catches, err := s.catches.ListCatches(r.Context(), tripID, requesterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catches)
}
