package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/fishlog/internal/domain"
)

// BuddyRepo defines the persistence operations for trip ↔ buddy links.
type BuddyRepo interface {
	// Add links every buddy in buddyIDs to the trip. Pairs that already exist
	// are skipped silently. Returns the number of newly created links.
	Add(ctx context.Context, tripID int64, buddyIDs []int64) (int64, error)

	// ListByTripID returns the buddy users of a trip ordered by name.
	ListByTripID(ctx context.Context, tripID int64) ([]domain.User, error)
}

// pgBuddyRepo is the Postgres implementation of BuddyRepo.
type pgBuddyRepo struct {
	db db
}

// NewBuddyRepo constructs a BuddyRepo backed by the provided db connection.
func NewBuddyRepo(db db) BuddyRepo {
	return &pgBuddyRepo{db: db}
}

func (r *pgBuddyRepo) Add(ctx context.Context, tripID int64, buddyIDs []int64) (int64, error) {
	const q = `
		INSERT INTO fishing_trip_buddies (trip_id, buddy_id)
		SELECT @trip_id, buddy_id
		FROM unnest(@buddy_ids::bigint[]) AS buddy_id
		ON CONFLICT (trip_id, buddy_id) DO NOTHING`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "buddy_ids": buddyIDs})
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("repo.BuddyRepo.Add: %w: unknown trip or user", domain.ErrValidation)
		}
		return 0, fmt.Errorf("repo.BuddyRepo.Add: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgBuddyRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.User, error) {
	const q = `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at
		FROM fishing_trip_buddies b
		JOIN users u ON u.id = b.buddy_id
		WHERE b.trip_id = @trip_id
		ORDER BY u.name, u.id`

	users, err := queryUsers(ctx, r.db, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.BuddyRepo.ListByTripID: %w", err)
	}
	return users, nil
}
