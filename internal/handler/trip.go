package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fishlog/internal/domain"
)

// startTripRequest is the body of POST /trips/start.
type startTripRequest struct {
	TargetSpecies   domain.Species      `json:"target_species"`
	Date            *openapi_types.Date `json:"date"`
	Location        *string             `json:"location"`
	Latitude        *float64            `json:"latitude"`
	Longitude       *float64            `json:"longitude"`
	NumberOfPersons *int                `json:"number_of_persons"`
	WeatherData     json.RawMessage     `json:"weather_data"`
	LunarData       json.RawMessage     `json:"lunar_data"`
}

// tripFields holds every field a client may auto-save or send on completion.
type tripFields struct {
	TargetSpecies   *domain.Species     `json:"target_species"`
	Date            *openapi_types.Date `json:"date"`
	Location        *string             `json:"location"`
	Latitude        *float64            `json:"latitude"`
	Longitude       *float64            `json:"longitude"`
	NumberOfPersons *int                `json:"number_of_persons"`

	HoursFished         *float64 `json:"hours_fished"`
	NumberOfFish        *int     `json:"number_of_fish"`
	PerchOver40         *int     `json:"perch_over_40"`
	NumberOfBonusPike   *int     `json:"number_of_bonus_pike"`
	NumberOfBonusZander *int     `json:"number_of_bonus_zander"`
	NumberOfBonusPerch  *int     `json:"number_of_bonus_perch"`
	WaterTemperature    *float64 `json:"water_temperature"`
	BagTotal            *float64 `json:"bag_total"`
	Comment             *string  `json:"comment"`
}

// tripPatchRequest is the body of PATCH /trips/{id}. Setting status to
// "completed" turns the patch into a completion.
type tripPatchRequest struct {
	Status *domain.TripStatus `json:"status"`
	tripFields
}

// tripResponse renders a trip with its date as YYYY-MM-DD.
type tripResponse struct {
	domain.Trip
	Date openapi_types.Date `json:"date"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type tripListResponse struct {
	Data       []tripResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeValidationError(w, "page must be an integer")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeValidationError(w, "limit must be an integer")
		return
	}

	result, err := s.trips.List(r.Context(), ownerID, domain.NewPaginationParams(page, limit))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripListResponse{
		Data: tripsToResponse(result.Trips),
		Pagination: pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages(),
		},
	})
}

// StartTrip handles POST /trips/start.
func (s *Server) StartTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req startTripRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	trip, err := s.trips.StartTrip(r.Context(), ownerID, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// CompleteActiveTrip handles POST /trips/complete. The body is optional;
// fields saved earlier count toward the completion requirements.
func (s *Server) CompleteActiveTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req tripFields
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		decodeFailed(w, err)
		return
	}

	trip, err := s.trips.CompleteActiveTrip(r.Context(), ownerID, req.toPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// GetActiveTrip handles GET /trips/active.
func (s *Server) GetActiveTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetActiveTrip(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), tripID, requesterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// PatchTrip handles PATCH /trips/{id}: an auto-saved partial update, or a
// completion when the body carries "status": "completed".
func (s *Server) PatchTrip(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req tripPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	var (
		trip domain.Trip
		err  error
	)
	switch {
	case req.Status == nil:
		trip, err = s.trips.ApplyPartialUpdate(r.Context(), tripID, requesterID, req.toPatch())
	case *req.Status == domain.TripStatusCompleted:
		trip, err = s.trips.CompleteTrip(r.Context(), tripID, requesterID, req.toPatch())
	default:
		writeValidationError(w, `status can only be set to "completed"`)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), tripID, requesterID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /trips/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}
	stats, err := s.stats.ComputeStats(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Stats:         stats,
		RecentReports: tripsToResponse(stats.RecentReports),
	})
}

type statsResponse struct {
	domain.Stats
	RecentReports []tripResponse `json:"recentReports"`
}

// ---- mapping helpers -------------------------------------------------------

// toInput converts the request into the service input. A missing date stays
// zero so the service reports it; number_of_persons defaults to 1.
func (req startTripRequest) toInput() domain.StartTripInput {
	in := domain.StartTripInput{
		TargetSpecies:   req.TargetSpecies,
		Location:        req.Location,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		NumberOfPersons: 1,
		WeatherData:     req.WeatherData,
		LunarData:       req.LunarData,
	}
	if req.Date != nil {
		in.Date = req.Date.Time
	}
	if req.NumberOfPersons != nil {
		in.NumberOfPersons = *req.NumberOfPersons
	}
	return in
}

func (f tripFields) toPatch() domain.TripPatch {
	p := domain.TripPatch{
		TargetSpecies:       f.TargetSpecies,
		Location:            f.Location,
		Latitude:            f.Latitude,
		Longitude:           f.Longitude,
		NumberOfPersons:     f.NumberOfPersons,
		HoursFished:         f.HoursFished,
		NumberOfFish:        f.NumberOfFish,
		PerchOver40:         f.PerchOver40,
		NumberOfBonusPike:   f.NumberOfBonusPike,
		NumberOfBonusZander: f.NumberOfBonusZander,
		NumberOfBonusPerch:  f.NumberOfBonusPerch,
		WaterTemperature:    f.WaterTemperature,
		BagTotal:            f.BagTotal,
		Comment:             f.Comment,
	}
	if f.Date != nil {
		d := f.Date.Time
		p.Date = &d
	}
	return p
}

func tripToResponse(t domain.Trip) tripResponse {
	return tripResponse{Trip: t, Date: openapi_types.Date{Time: t.Date}}
}

func tripsToResponse(trips []domain.Trip) []tripResponse {
	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	return out
}
