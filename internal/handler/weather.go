package handler

import (
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// GetWeather handles GET /weather?lat=&lon=&date=. The date defaults to
// today. The upstream JSON object is returned unchanged.
func (s *Server) GetWeather(w http.ResponseWriter, r *http.Request) {
	var lat, lon float64
	if err := runtime.BindQueryParameter("form", true, true, "lat", r.URL.Query(), &lat); err != nil {
		writeValidationError(w, "lat is required and must be a number")
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "lon", r.URL.Query(), &lon); err != nil {
		writeValidationError(w, "lon is required and must be a number")
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeValidationError(w, "lat must be within [-90, 90] and lon within [-180, 180]")
		return
	}
	date, ok := s.queryDate(w, r)
	if !ok {
		return
	}

	raw, err := s.weather.Current(r.Context(), lat, lon, date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRawJSON(w, raw)
}

// GetLunar handles GET /weather/lunar?date=. The date defaults to today.
func (s *Server) GetLunar(w http.ResponseWriter, r *http.Request) {
	date, ok := s.queryDate(w, r)
	if !ok {
		return
	}
	raw, err := s.weather.MoonPhase(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRawJSON(w, raw)
}

// queryDate binds the optional ?date=YYYY-MM-DD parameter.
func (s *Server) queryDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	var date *openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &date); err != nil {
		writeValidationError(w, "date must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	if date == nil {
		y, m, d := s.now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return date.Time, true
}

func writeRawJSON(w http.ResponseWriter, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
