package service_test

import (
	"context"
	"sync"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/repo"
	"github.com/pkordes/fishlog/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. An unset field panics, which flags an unexpected call.

type mockTripRepo struct {
	create           func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID          func(ctx context.Context, id int64) (domain.Trip, error)
	getActiveByOwner func(ctx context.Context, ownerID int64) (domain.Trip, error)
	listByOwner      func(ctx context.Context, ownerID int64) ([]domain.Trip, error)
	listByOwnerPaged func(ctx context.Context, ownerID int64, p domain.PaginationParams) ([]domain.Trip, int64, error)
	applyPatch       func(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error)
	complete         func(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error)
	delete           func(ctx context.Context, id int64) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) GetActiveByOwner(ctx context.Context, ownerID int64) (domain.Trip, error) {
	return m.getActiveByOwner(ctx, ownerID)
}
func (m *mockTripRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Trip, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockTripRepo) ListByOwnerPaged(ctx context.Context, ownerID int64, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByOwnerPaged(ctx, ownerID, p)
}
func (m *mockTripRepo) ApplyPatch(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	return m.applyPatch(ctx, id, patch)
}
func (m *mockTripRepo) Complete(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	return m.complete(ctx, id, patch)
}
func (m *mockTripRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// memTripRepo is an in-memory TripRepo that mirrors the Postgres semantics
// the service relies on: one active trip per owner, COALESCE patches, and a
// status-guarded completion.
type memTripRepo struct {
	mu     sync.Mutex
	nextID int64
	trips  map[int64]domain.Trip
}

func newMemTripRepo(seed ...domain.Trip) *memTripRepo {
	m := &memTripRepo{trips: make(map[int64]domain.Trip)}
	for _, t := range seed {
		if t.ID > m.nextID {
			m.nextID = t.ID
		}
		m.trips[t.ID] = t
	}
	return m
}

func (m *memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.UserID == trip.UserID && t.Status == domain.TripStatusActive {
			return domain.Trip{}, domain.ErrConflict
		}
	}
	m.nextID++
	trip.ID = m.nextID
	m.trips[trip.ID] = trip
	return trip, nil
}

func (m *memTripRepo) GetByID(_ context.Context, id int64) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *memTripRepo) GetActiveByOwner(_ context.Context, ownerID int64) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.UserID == ownerID && t.Status == domain.TripStatusActive {
			return t, nil
		}
	}
	return domain.Trip{}, domain.ErrNotFound
}

func (m *memTripRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trip
	for _, t := range m.trips {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTripRepo) ListByOwnerPaged(ctx context.Context, ownerID int64, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, err := m.ListByOwner(ctx, ownerID)
	return trips, int64(len(trips)), err
}

func (m *memTripRepo) ApplyPatch(_ context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	t = patch.Apply(t)
	m.trips[id] = t
	return t, nil
}

func (m *memTripRepo) Complete(_ context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok || t.Status != domain.TripStatusActive {
		return domain.Trip{}, domain.ErrConflict
	}
	t = patch.Apply(t)
	t.Status = domain.TripStatusCompleted
	m.trips[id] = t
	return t, nil
}

func (m *memTripRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.trips, id)
	return nil
}

var _ repo.TripRepo = (*memTripRepo)(nil)

type mockUserRepo struct {
	create      func(ctx context.Context, u domain.User) (domain.User, error)
	getByID     func(ctx context.Context, id int64) (domain.User, error)
	getByEmail  func(ctx context.Context, email string) (domain.User, error)
	listExcept  func(ctx context.Context, id int64) ([]domain.User, error)
	existingIDs func(ctx context.Context, ids []int64) ([]int64, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) ListExcept(ctx context.Context, id int64) ([]domain.User, error) {
	return m.listExcept(ctx, id)
}
func (m *mockUserRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return m.existingIDs(ctx, ids)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockBuddyRepo struct {
	add          func(ctx context.Context, tripID int64, buddyIDs []int64) (int64, error)
	listByTripID func(ctx context.Context, tripID int64) ([]domain.User, error)
}

func (m *mockBuddyRepo) Add(ctx context.Context, tripID int64, buddyIDs []int64) (int64, error) {
	return m.add(ctx, tripID, buddyIDs)
}
func (m *mockBuddyRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.User, error) {
	return m.listByTripID(ctx, tripID)
}

var _ repo.BuddyRepo = (*mockBuddyRepo)(nil)

type mockCatchRepo struct {
	create       func(ctx context.Context, c domain.Catch) (domain.Catch, error)
	listByTripID func(ctx context.Context, tripID int64) ([]domain.Catch, error)
}

func (m *mockCatchRepo) Create(ctx context.Context, c domain.Catch) (domain.Catch, error) {
	return m.create(ctx, c)
}
func (m *mockCatchRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.Catch, error) {
	return m.listByTripID(ctx, tripID)
}

var _ repo.CatchRepo = (*mockCatchRepo)(nil)

// spyStatsCache records invalidations and keeps one versioned entry per
// owner, serving it only while its version is current.
type spyStatsCache struct {
	mu          sync.Mutex
	versions    map[int64]int64
	stored      map[int64]versionedStats
	invalidated []int64
	err         error
}

type versionedStats struct {
	version int64
	stats   domain.Stats
}

func (c *spyStatsCache) Get(_ context.Context, ownerID int64) (domain.Stats, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return domain.Stats{}, 0, false, c.err
	}
	current := c.versions[ownerID]
	e, ok := c.stored[ownerID]
	if !ok || e.version != current {
		return domain.Stats{}, current, false, nil
	}
	return e.stats, current, true, nil
}

func (c *spyStatsCache) Set(_ context.Context, ownerID, version int64, s domain.Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.stored == nil {
		c.stored = make(map[int64]versionedStats)
	}
	c.stored[ownerID] = versionedStats{version: version, stats: s}
	return nil
}

func (c *spyStatsCache) Invalidate(_ context.Context, ownerID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ownerID)
	if c.err != nil {
		return c.err
	}
	if c.versions == nil {
		c.versions = make(map[int64]int64)
	}
	c.versions[ownerID]++
	return nil
}

var _ service.StatsCache = (*spyStatsCache)(nil)

func ptr[T any](v T) *T { return &v }
