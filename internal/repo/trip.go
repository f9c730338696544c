// Package repo contains all database access logic for the fishing logbook.
// Each resource has its own file with an interface and a Postgres implementation.
// Business rules live in the service package; this one holds SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fishlog/internal/domain"
)

// Postgres error codes and constraint names the repos translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
	pgCheckViolation      = "23514"

	oneActiveTripIndex = "fishing_trips_one_active_per_user"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record.
	// Returns domain.ErrConflict if the owner already has an active trip.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Trip, error)

	// GetActiveByOwner returns the owner's trip in the active state.
	// Returns domain.ErrNotFound if there is none.
	GetActiveByOwner(ctx context.Context, ownerID int64) (domain.Trip, error)

	// ListByOwner returns every trip the owner has, newest date first.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Trip, error)

	// ListByOwnerPaged returns one page of the owner's trips, newest date first,
	// along with the owner's total trip count.
	ListByOwnerPaged(ctx context.Context, ownerID int64, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// ApplyPatch writes every non-nil field of patch onto the trip and leaves
	// the rest untouched. Returns domain.ErrNotFound if the trip does not exist.
	ApplyPatch(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error)

	// Complete applies patch and moves the trip to completed in one statement.
	// Returns domain.ErrConflict if the trip is not (or no longer) active.
	Complete(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error)

	// Delete removes a trip by ID; catches and buddy links cascade.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `
	id, user_id, target_species, date, location, latitude, longitude, status,
	number_of_persons, weather_data, lunar_data,
	hours_fished, number_of_fish, perch_over_40, number_of_bonus_pike,
	number_of_bonus_zander, number_of_bonus_perch, water_temperature,
	bag_total, comment, created_at, updated_at`

// patchAssignments is shared by ApplyPatch and Complete. Every column is
// COALESCEd so that a nil argument keeps the stored value.
const patchAssignments = `
	target_species         = COALESCE(@target_species, target_species),
	date                   = COALESCE(@date, date),
	location               = COALESCE(@location, location),
	latitude               = COALESCE(@latitude, latitude),
	longitude              = COALESCE(@longitude, longitude),
	number_of_persons      = COALESCE(@number_of_persons, number_of_persons),
	hours_fished           = COALESCE(@hours_fished, hours_fished),
	number_of_fish         = COALESCE(@number_of_fish, number_of_fish),
	perch_over_40          = COALESCE(@perch_over_40, perch_over_40),
	number_of_bonus_pike   = COALESCE(@number_of_bonus_pike, number_of_bonus_pike),
	number_of_bonus_zander = COALESCE(@number_of_bonus_zander, number_of_bonus_zander),
	number_of_bonus_perch  = COALESCE(@number_of_bonus_perch, number_of_bonus_perch),
	water_temperature      = COALESCE(@water_temperature, water_temperature),
	bag_total              = COALESCE(@bag_total, bag_total),
	comment                = COALESCE(@comment, comment),
	updated_at             = now()`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO fishing_trips (
			user_id, target_species, date, location, latitude, longitude, status,
			number_of_persons, weather_data, lunar_data
		)
		VALUES (
			@user_id, @target_species, @date, @location, @latitude, @longitude, @status,
			@number_of_persons, @weather_data, @lunar_data
		)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"user_id":           trip.UserID,
		"target_species":    string(trip.TargetSpecies),
		"date":              pgtype.Date{Time: trip.Date, Valid: true},
		"location":          trip.Location, // nil becomes NULL
		"latitude":          trip.Latitude,
		"longitude":         trip.Longitude,
		"status":            string(trip.Status),
		"number_of_persons": trip.NumberOfPersons,
		"weather_data":      jsonArg(trip.WeatherData),
		"lunar_data":        jsonArg(trip.LunarData),
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err, oneActiveTripIndex) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w: active trip already exists", domain.ErrConflict)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", asValidation(err))
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM fishing_trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetActiveByOwner retrieves the owner's single active trip.
func (r *pgTripRepo) GetActiveByOwner(ctx context.Context, ownerID int64) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM fishing_trips
		WHERE user_id = @user_id AND status = 'active'
		LIMIT 1`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": ownerID}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetActiveByOwner: %w", err)
	}
	return result, nil
}

// ListByOwner returns all of the owner's trips ordered by date descending.
// Ties on date are broken by id descending so the order is stable.
func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM fishing_trips
		WHERE user_id = @user_id
		ORDER BY date DESC, id DESC`

	trips, err := r.queryTrips(ctx, q, pgx.NamedArgs{"user_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	return trips, nil
}

// ListByOwnerPaged returns one page of the owner's trips plus the total count.
func (r *pgTripRepo) ListByOwnerPaged(ctx context.Context, ownerID int64, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `SELECT count(*) FROM fishing_trips WHERE user_id = @user_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"user_id": ownerID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwnerPaged: count: %w", err)
	}

	q := `SELECT ` + tripColumns + `
		FROM fishing_trips
		WHERE user_id = @user_id
		ORDER BY date DESC, id DESC
		LIMIT @limit OFFSET @offset`

	trips, err := r.queryTrips(ctx, q, pgx.NamedArgs{
		"user_id": ownerID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwnerPaged: %w", err)
	}
	return trips, total, nil
}

// ApplyPatch merges the supplied fields into the stored row.
func (r *pgTripRepo) ApplyPatch(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	q := `
		UPDATE fishing_trips
		SET ` + patchAssignments + `
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, patchArgs(id, patch)))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.ApplyPatch: %w", asValidation(err))
	}
	return result, nil
}

// Complete merges the supplied fields and flips the status in a single
// statement. The status guard makes a second completion a no-op that
// surfaces as domain.ErrConflict.
func (r *pgTripRepo) Complete(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	q := `
		UPDATE fishing_trips
		SET ` + patchAssignments + `,
		    status = 'completed'
		WHERE id = @id AND status = 'active'
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, patchArgs(id, patch)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Complete: %w: trip already completed", domain.ErrConflict)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Complete: %w", asValidation(err))
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM fishing_trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) queryTrips(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return trips, nil
}

// patchArgs flattens a TripPatch into named arguments. Nil pointers become
// NULL, which COALESCE then ignores.
func patchArgs(id int64, p domain.TripPatch) pgx.NamedArgs {
	var species *string
	if p.TargetSpecies != nil {
		s := string(*p.TargetSpecies)
		species = &s
	}
	var date *pgtype.Date
	if p.Date != nil {
		date = &pgtype.Date{Time: *p.Date, Valid: true}
	}
	return pgx.NamedArgs{
		"id":                     id,
		"target_species":         species,
		"date":                   date,
		"location":               p.Location,
		"latitude":               p.Latitude,
		"longitude":              p.Longitude,
		"number_of_persons":      p.NumberOfPersons,
		"hours_fished":           p.HoursFished,
		"number_of_fish":         p.NumberOfFish,
		"perch_over_40":          p.PerchOver40,
		"number_of_bonus_pike":   p.NumberOfBonusPike,
		"number_of_bonus_zander": p.NumberOfBonusZander,
		"number_of_bonus_perch":  p.NumberOfBonusPerch,
		"water_temperature":      p.WaterTemperature,
		"bag_total":              p.BagTotal,
		"comment":                p.Comment,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the DATE, enum, and JSONB conversions; nullable numeric columns
// scan straight into pointer fields.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t       domain.Trip
		species string
		status  string
		date    pgtype.Date
		weather []byte
		lunar   []byte
	)

	err := s.Scan(
		&t.ID, &t.UserID, &species, &date, &t.Location, &t.Latitude, &t.Longitude, &status,
		&t.NumberOfPersons, &weather, &lunar,
		&t.HoursFished, &t.NumberOfFish, &t.PerchOver40, &t.NumberOfBonusPike,
		&t.NumberOfBonusZander, &t.NumberOfBonusPerch, &t.WaterTemperature,
		&t.BagTotal, &t.Comment, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.TargetSpecies = domain.Species(species)
	t.Status = domain.TripStatus(status)
	t.Date = date.Time
	if len(weather) > 0 {
		t.WeatherData = json.RawMessage(weather)
	}
	if len(lunar) > 0 {
		t.LunarData = json.RawMessage(lunar)
	}
	return t, nil
}

// jsonArg converts an optional JSON snapshot into a query argument:
// untyped nil for SQL NULL, otherwise the JSON text.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// isUniqueViolation reports whether err is a unique violation, optionally on
// a specific constraint or index.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// asValidation turns a value the columns cannot hold (numeric overflow or a
// failed CHECK) into domain.ErrValidation. Any other error is returned as is.
func asValidation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgNumericOutOfRange:
		return fmt.Errorf("%w: value out of range", domain.ErrValidation)
	case pgCheckViolation:
		return fmt.Errorf("%w: value violates %s", domain.ErrValidation, pgErr.ConstraintName)
	}
	return err
}
