package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/repo"
)

// BuddyService links other users to a trip as fishing companions.
type BuddyService struct {
	trips   repo.TripRepo
	users   repo.UserRepo
	buddies repo.BuddyRepo
}

// NewBuddyService constructs a BuddyService backed by the provided repos.
func NewBuddyService(trips repo.TripRepo, users repo.UserRepo, buddies repo.BuddyRepo) *BuddyService {
	return &BuddyService{trips: trips, users: users, buddies: buddies}
}

// AddBuddies links every user in buddyIDs to the trip. Re-adding an existing
// buddy is a no-op. Returns the number of links actually created.
//
// Returns domain.ErrValidation for an empty list, unknown user ids, or the
// owner's own id.
func (s *BuddyService) AddBuddies(ctx context.Context, tripID, requesterID int64, buddyIDs []int64) (int64, error) {
	trip, err := loadOwnedTrip(ctx, s.trips, tripID, requesterID)
	if err != nil {
		return 0, fmt.Errorf("service.BuddyService.AddBuddies: %w", err)
	}
	if len(buddyIDs) == 0 {
		return 0, fmt.Errorf("%w: at least one buddy must be selected", domain.ErrValidation)
	}

	ids := slices.Clone(buddyIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if slices.Contains(ids, trip.UserID) {
		return 0, fmt.Errorf("%w: the trip owner cannot be added as a buddy", domain.ErrValidation)
	}

	existing, err := s.users.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("service.BuddyService.AddBuddies: %w", err)
	}
	if len(existing) != len(ids) {
		var unknown []int64
		for _, id := range ids {
			if !slices.Contains(existing, id) {
				unknown = append(unknown, id)
			}
		}
		return 0, fmt.Errorf("%w: unknown user ids %v", domain.ErrValidation, unknown)
	}

	added, err := s.buddies.Add(ctx, trip.ID, ids)
	if err != nil {
		return 0, fmt.Errorf("service.BuddyService.AddBuddies: %w", err)
	}
	return added, nil
}

// ListBuddies returns the buddies of a trip the requester owns.
// Always returns a non-nil slice.
func (s *BuddyService) ListBuddies(ctx context.Context, tripID, requesterID int64) ([]domain.User, error) {
	if _, err := loadOwnedTrip(ctx, s.trips, tripID, requesterID); err != nil {
		return nil, fmt.Errorf("service.BuddyService.ListBuddies: %w", err)
	}
	users, err := s.buddies.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.BuddyService.ListBuddies: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}
