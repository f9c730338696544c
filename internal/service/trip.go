// Package service contains the business logic for the fishing logbook API.
// Services validate inputs, enforce the trip lifecycle and ownership rules,
// and orchestrate repo calls. SQL stays in the repo package; services depend
// on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/repo"
)

// requiredOnCompletion lists the phase-2 fields that must be set, either in
// the completion payload or from earlier auto-saves, before a trip can close.
var requiredOnCompletion = []struct {
	name string
	set  func(domain.Trip) bool
}{
	{"hours_fished", func(t domain.Trip) bool { return t.HoursFished != nil }},
	{"number_of_fish", func(t domain.Trip) bool { return t.NumberOfFish != nil }},
	{"water_temperature", func(t domain.Trip) bool { return t.WaterTemperature != nil }},
}

// TripService owns the trip lifecycle: active → completed, at most one active
// trip per owner, and partial auto-save updates in either state.
type TripService struct {
	trips repo.TripRepo
	cache StatsCache
}

// NewTripService constructs a TripService. cache may be nil, in which case
// stats invalidation is skipped.
func NewTripService(trips repo.TripRepo, cache StatsCache) *TripService {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	return &TripService{trips: trips, cache: cache}
}

// StartTrip creates a new active trip for ownerID.
// Returns domain.ErrValidation for bad phase-1 input and domain.ErrConflict
// if the owner already has an active trip.
func (s *TripService) StartTrip(ctx context.Context, ownerID int64, in domain.StartTripInput) (domain.Trip, error) {
	if err := validateStartInput(in); err != nil {
		return domain.Trip{}, err
	}

	_, err := s.trips.GetActiveByOwner(ctx, ownerID)
	switch {
	case err == nil:
		return domain.Trip{}, fmt.Errorf("service.TripService.StartTrip: %w: active trip already exists", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Trip{}, fmt.Errorf("service.TripService.StartTrip: %w", err)
	}

	trip := domain.Trip{
		UserID:          ownerID,
		TargetSpecies:   in.TargetSpecies,
		Date:            truncateToDate(in.Date),
		Location:        trimLocation(in.Location),
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		Status:          domain.TripStatusActive,
		NumberOfPersons: in.NumberOfPersons,
		WeatherData:     normalizeSnapshot(in.WeatherData),
		LunarData:       normalizeSnapshot(in.LunarData),
	}

	// A concurrent start that slipped past the check above loses on the
	// partial unique index and comes back as domain.ErrConflict.
	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.StartTrip: %w", err)
	}
	s.invalidateStats(ctx, ownerID)
	return created, nil
}

// ApplyPartialUpdate merges the supplied fields into the trip. It works in
// either lifecycle state and never touches status.
func (s *TripService) ApplyPartialUpdate(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error) {
	if _, err := s.ownedTrip(ctx, tripID, requesterID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.ApplyPartialUpdate: %w", err)
	}
	patch = normalizePatch(patch)
	if err := validatePatch(patch); err != nil {
		return domain.Trip{}, err
	}

	updated, err := s.trips.ApplyPatch(ctx, tripID, patch)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.ApplyPartialUpdate: %w", err)
	}
	s.invalidateStats(ctx, requesterID)
	return updated, nil
}

// CompleteTrip applies the final payload and moves the trip to completed.
// The required phase-2 fields may come from the payload or from earlier
// auto-saves. Returns domain.ErrConflict if the trip is already completed.
func (s *TripService) CompleteTrip(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error) {
	trip, err := s.ownedTrip(ctx, tripID, requesterID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CompleteTrip: %w", err)
	}
	return s.complete(ctx, trip, patch)
}

// CompleteActiveTrip completes the owner's current active trip.
// Returns domain.ErrNotFound if the owner has none.
func (s *TripService) CompleteActiveTrip(ctx context.Context, ownerID int64, patch domain.TripPatch) (domain.Trip, error) {
	trip, err := s.trips.GetActiveByOwner(ctx, ownerID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CompleteActiveTrip: %w", err)
	}
	return s.complete(ctx, trip, patch)
}

func (s *TripService) complete(ctx context.Context, trip domain.Trip, patch domain.TripPatch) (domain.Trip, error) {
	if trip.Status == domain.TripStatusCompleted {
		return domain.Trip{}, fmt.Errorf("service.TripService.CompleteTrip: %w: trip already completed", domain.ErrConflict)
	}

	patch = normalizePatch(patch)
	if err := validatePatchFields(patch); err != nil {
		return domain.Trip{}, err
	}

	// Fields can only be set, never cleared, so what is present in the merged
	// view is still present when the guarded UPDATE runs.
	merged := patch.Apply(trip)
	var missing []string
	for _, f := range requiredOnCompletion {
		if !f.set(merged) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return domain.Trip{}, fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	completed, err := s.trips.Complete(ctx, trip.ID, patch)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CompleteTrip: %w", err)
	}
	s.invalidateStats(ctx, trip.UserID)
	return completed, nil
}

// GetActiveTrip returns the owner's active trip, or domain.ErrNotFound.
func (s *TripService) GetActiveTrip(ctx context.Context, ownerID int64) (domain.Trip, error) {
	trip, err := s.trips.GetActiveByOwner(ctx, ownerID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetActiveTrip: %w", err)
	}
	return trip, nil
}

// GetByID returns a trip the requester owns.
func (s *TripService) GetByID(ctx context.Context, tripID, requesterID int64) (domain.Trip, error) {
	trip, err := s.ownedTrip(ctx, tripID, requesterID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns one page of the owner's trips, newest first.
// Trips is always non-nil.
func (s *TripService) List(ctx context.Context, ownerID int64, p domain.PaginationParams) (domain.TripPage, error) {
	trips, total, err := s.trips.ListByOwnerPaged(ctx, ownerID, p)
	if err != nil {
		return domain.TripPage{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return domain.TripPage{Trips: trips, Total: total, PaginationParams: p}, nil
}

// Delete removes a trip the requester owns, along with its catches and
// buddy links.
func (s *TripService) Delete(ctx context.Context, tripID, requesterID int64) error {
	if _, err := s.ownedTrip(ctx, tripID, requesterID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.invalidateStats(ctx, requesterID)
	return nil
}

func (s *TripService) ownedTrip(ctx context.Context, tripID, requesterID int64) (domain.Trip, error) {
	return loadOwnedTrip(ctx, s.trips, tripID, requesterID)
}

func (s *TripService) invalidateStats(ctx context.Context, ownerID int64) {
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		slog.WarnContext(ctx, "stats cache invalidate failed", "owner_id", ownerID, "error", err)
	}
}

// loadOwnedTrip fetches a trip and checks that requesterID owns it.
// Returns domain.ErrNotFound or domain.ErrForbidden.
func loadOwnedTrip(ctx context.Context, trips repo.TripRepo, tripID, requesterID int64) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.UserID != requesterID {
		return domain.Trip{}, fmt.Errorf("%w: trip belongs to another user", domain.ErrForbidden)
	}
	return trip, nil
}

// normalizePatch trims free text and drops the time of day from the date.
func normalizePatch(p domain.TripPatch) domain.TripPatch {
	if p.Date != nil {
		d := truncateToDate(*p.Date)
		p.Date = &d
	}
	if p.Location != nil {
		loc := strings.TrimSpace(*p.Location)
		p.Location = &loc
	}
	return p
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// trimLocation strips surrounding whitespace. A blank location is no location.
func trimLocation(loc *string) *string {
	if loc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*loc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
