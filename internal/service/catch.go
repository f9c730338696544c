package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/repo"
)

// CatchService records individual fish against a trip.
type CatchService struct {
	trips   repo.TripRepo
	catches repo.CatchRepo
}

// NewCatchService constructs a CatchService backed by the provided repos.
func NewCatchService(trips repo.TripRepo, catches repo.CatchRepo) *CatchService {
	return &CatchService{trips: trips, catches: catches}
}

// AddCatch validates c and stores it under the trip.
// caught_at must fall on the trip's date, judged in caught_at's own offset.
func (s *CatchService) AddCatch(ctx context.Context, tripID, requesterID int64, c domain.Catch) (domain.Catch, error) {
	trip, err := loadOwnedTrip(ctx, s.trips, tripID, requesterID)
	if err != nil {
		return domain.Catch{}, fmt.Errorf("service.CatchService.AddCatch: %w", err)
	}

	c.TripID = trip.ID
	c.Species = strings.TrimSpace(c.Species)
	if err := validateStruct(c); err != nil {
		return domain.Catch{}, err
	}
	if err := validateCoordinates(c.Latitude, c.Longitude); err != nil {
		return domain.Catch{}, err
	}
	if c.CaughtAt.IsZero() {
		return domain.Catch{}, fmt.Errorf("%w: caught_at is required", domain.ErrValidation)
	}
	if !sameCalendarDate(c.CaughtAt, trip) {
		return domain.Catch{}, fmt.Errorf("%w: caught_at must be on the trip date %s",
			domain.ErrValidation, trip.Date.Format(time.DateOnly))
	}

	created, err := s.catches.Create(ctx, c)
	if err != nil {
		return domain.Catch{}, fmt.Errorf("service.CatchService.AddCatch: %w", err)
	}
	return created, nil
}

// ListCatches returns the catches of a trip the requester owns, earliest
// first. Always returns a non-nil slice.
func (s *CatchService) ListCatches(ctx context.Context, tripID, requesterID int64) ([]domain.Catch, error) {
	if _, err := loadOwnedTrip(ctx, s.trips, tripID, requesterID); err != nil {
		return nil, fmt.Errorf("service.CatchService.ListCatches: %w", err)
	}
	catches, err := s.catches.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.CatchService.ListCatches: %w", err)
	}
	if catches == nil {
		return []domain.Catch{}, nil
	}
	return catches, nil
}

func sameCalendarDate(at time.Time, trip domain.Trip) bool {
	y, m, d := at.Date()
	ty, tm, td := trip.Date.Date()
	return y == ty && m == tm && d == td
}
