package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/fishlog/internal/domain"
)

// CatchRepo defines the persistence operations for Catches.
// Catches are append-only; they disappear only through the trip cascade.
type CatchRepo interface {
	// Create inserts a new catch and returns the persisted record.
	Create(ctx context.Context, c domain.Catch) (domain.Catch, error)

	// ListByTripID returns all catches for a trip ordered by caught_at ascending.
	ListByTripID(ctx context.Context, tripID int64) ([]domain.Catch, error)
}

// pgCatchRepo is the Postgres implementation of CatchRepo.
type pgCatchRepo struct {
	db db
}

// NewCatchRepo constructs a CatchRepo backed by the provided db connection.
func NewCatchRepo(db db) CatchRepo {
	return &pgCatchRepo{db: db}
}

const catchColumns = `id, trip_id, species, weight_grams, length_cm, depth_cm, latitude, longitude, caught_at, created_at`

func (r *pgCatchRepo) Create(ctx context.Context, c domain.Catch) (domain.Catch, error) {
	const q = `
		INSERT INTO trip_catches (trip_id, species, weight_grams, length_cm, depth_cm, latitude, longitude, caught_at)
		VALUES (@trip_id, @species, @weight_grams, @length_cm, @depth_cm, @latitude, @longitude, @caught_at)
		RETURNING ` + catchColumns

	args := pgx.NamedArgs{
		"trip_id":      c.TripID,
		"species":      c.Species,
		"weight_grams": c.WeightGrams,
		"length_cm":    c.LengthCm,
		"depth_cm":     c.DepthCm,
		"latitude":     c.Latitude,
		"longitude":    c.Longitude,
		"caught_at":    c.CaughtAt,
	}

	result, err := scanCatch(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isForeignKeyViolation(err) {
			// The trip was deleted between the ownership check and the insert.
			return domain.Catch{}, fmt.Errorf("repo.CatchRepo.Create: %w", domain.ErrNotFound)
		}
		return domain.Catch{}, fmt.Errorf("repo.CatchRepo.Create: %w", asValidation(err))
	}
	return result, nil
}

func (r *pgCatchRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.Catch, error) {
	q := `SELECT ` + catchColumns + `
		FROM trip_catches
		WHERE trip_id = @trip_id
		ORDER BY caught_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.CatchRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var catches []domain.Catch
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CatchRepo.ListByTripID: scan: %w", err)
		}
		catches = append(catches, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CatchRepo.ListByTripID: rows: %w", err)
	}
	return catches, nil
}

func scanCatch(s scanner) (domain.Catch, error) {
	var c domain.Catch
	err := s.Scan(
		&c.ID, &c.TripID, &c.Species, &c.WeightGrams, &c.LengthCm, &c.DepthCm,
		&c.Latitude, &c.Longitude, &c.CaughtAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Catch{}, domain.ErrNotFound
		}
		return domain.Catch{}, err
	}
	return c, nil
}
