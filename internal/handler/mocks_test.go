package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/handler"
	"github.com/pkordes/fishlog/internal/service"
)

// ---- test doubles ----------------------------------------------------------
// Set only the method fields your test needs; an unset field panics, which
// flags a call the test did not expect.

type mockTripServicer struct {
	startTrip          func(ctx context.Context, ownerID int64, in domain.StartTripInput) (domain.Trip, error)
	applyPartialUpdate func(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error)
	completeTrip       func(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error)
	completeActiveTrip func(ctx context.Context, ownerID int64, patch domain.TripPatch) (domain.Trip, error)
	getActiveTrip      func(ctx context.Context, ownerID int64) (domain.Trip, error)
	getByID            func(ctx context.Context, tripID, requesterID int64) (domain.Trip, error)
	list               func(ctx context.Context, ownerID int64, p domain.PaginationParams) (domain.TripPage, error)
	delete             func(ctx context.Context, tripID, requesterID int64) error
}

func (m *mockTripServicer) StartTrip(ctx context.Context, ownerID int64, in domain.StartTripInput) (domain.Trip, error) {
	return m.startTrip(ctx, ownerID, in)
}
func (m *mockTripServicer) ApplyPartialUpdate(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error) {
	return m.applyPartialUpdate(ctx, tripID, requesterID, patch)
}
func (m *mockTripServicer) CompleteTrip(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error) {
	return m.completeTrip(ctx, tripID, requesterID, patch)
}
func (m *mockTripServicer) CompleteActiveTrip(ctx context.Context, ownerID int64, patch domain.TripPatch) (domain.Trip, error) {
	return m.completeActiveTrip(ctx, ownerID, patch)
}
func (m *mockTripServicer) GetActiveTrip(ctx context.Context, ownerID int64) (domain.Trip, error) {
	return m.getActiveTrip(ctx, ownerID)
}
func (m *mockTripServicer) GetByID(ctx context.Context, tripID, requesterID int64) (domain.Trip, error) {
	return m.getByID(ctx, tripID, requesterID)
}
func (m *mockTripServicer) List(ctx context.Context, ownerID int64, p domain.PaginationParams) (domain.TripPage, error) {
	return m.list(ctx, ownerID, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, tripID, requesterID int64) error {
	return m.delete(ctx, tripID, requesterID)
}

type mockStatsServicer struct {
	computeStats func(ctx context.Context, ownerID int64) (domain.Stats, error)
}

func (m *mockStatsServicer) ComputeStats(ctx context.Context, ownerID int64) (domain.Stats, error) {
	return m.computeStats(ctx, ownerID)
}

type mockBuddyServicer struct {
	addBuddies  func(ctx context.Context, tripID, requesterID int64, buddyIDs []int64) (int64, error)
	listBuddies func(ctx context.Context, tripID, requesterID int64) ([]domain.User, error)
}

func (m *mockBuddyServicer) AddBuddies(ctx context.Context, tripID, requesterID int64, buddyIDs []int64) (int64, error) {
	return m.addBuddies(ctx, tripID, requesterID, buddyIDs)
}
func (m *mockBuddyServicer) ListBuddies(ctx context.Context, tripID, requesterID int64) ([]domain.User, error) {
	return m.listBuddies(ctx, tripID, requesterID)
}

type mockCatchServicer struct {
	addCatch    func(ctx context.Context, tripID, requesterID int64, c domain.Catch) (domain.Catch, error)
	listCatches func(ctx context.Context, tripID, requesterID int64) ([]domain.Catch, error)
}

func (m *mockCatchServicer) AddCatch(ctx context.Context, tripID, requesterID int64, c domain.Catch) (domain.Catch, error) {
	return m.addCatch(ctx, tripID, requesterID, c)
}
func (m *mockCatchServicer) ListCatches(ctx context.Context, tripID, requesterID int64) ([]domain.Catch, error) {
	return m.listCatches(ctx, tripID, requesterID)
}

type mockAuthServicer struct {
	register  func(ctx context.Context, in service.RegisterInput) (service.Session, error)
	login     func(ctx context.Context, email, password string) (service.Session, error)
	me        func(ctx context.Context, userID int64) (domain.User, error)
	listUsers func(ctx context.Context, requesterID int64) ([]domain.User, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, in service.RegisterInput) (service.Session, error) {
	return m.register(ctx, in)
}
func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (service.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) Me(ctx context.Context, userID int64) (domain.User, error) {
	return m.me(ctx, userID)
}
func (m *mockAuthServicer) ListUsers(ctx context.Context, requesterID int64) ([]domain.User, error) {
	return m.listUsers(ctx, requesterID)
}

type mockWeatherFetcher struct {
	current   func(ctx context.Context, lat, lon float64, date time.Time) (json.RawMessage, error)
	moonPhase func(ctx context.Context, date time.Time) (json.RawMessage, error)
}

func (m *mockWeatherFetcher) Current(ctx context.Context, lat, lon float64, date time.Time) (json.RawMessage, error) {
	return m.current(ctx, lat, lon, date)
}
func (m *mockWeatherFetcher) MoonPhase(ctx context.Context, date time.Time) (json.RawMessage, error) {
	return m.moonPhase(ctx, date)
}

// fakeTokens accepts "user-<id>" as a token for that user id.
type fakeTokens struct{}

func (fakeTokens) Parse(token string) (int64, error) {
	idStr, ok := strings.CutPrefix(token, "user-")
	if !ok {
		return 0, errors.New("bad token")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.TripServicer   = (*mockTripServicer)(nil)
	_ handler.StatsServicer  = (*mockStatsServicer)(nil)
	_ handler.BuddyServicer  = (*mockBuddyServicer)(nil)
	_ handler.CatchServicer  = (*mockCatchServicer)(nil)
	_ handler.AuthServicer   = (*mockAuthServicer)(nil)
	_ handler.WeatherFetcher = (*mockWeatherFetcher)(nil)
)

// ---- helpers ---------------------------------------------------------------

const ownerID int64 = 7

// newHTTPHandler wires a Server with the given mocks the same way main.go does.
func newHTTPHandler(svc handler.Services) http.Handler {
	svc.Tokens = fakeTokens{}
	return handler.NewServer(svc).Routes()
}

// do sends a request as ownerID unless the caller has set its own
// Authorization header, and returns the recorder.
func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, target, body)
	req.Header.Set("Authorization", "Bearer user-"+strconv.FormatInt(ownerID, 10))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func ptr[T any](v T) *T { return &v }

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:              11,
		UserID:          ownerID,
		TargetSpecies:   domain.SpeciesPerch,
		Date:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Location:        ptr("LakeA"),
		Status:          domain.TripStatusActive,
		NumberOfPersons: 2,
		CreatedAt:       time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC),
	}
}
