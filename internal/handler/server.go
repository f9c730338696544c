// Package handler implements the HTTP handlers for the fishing logbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, catch.go, etc.) but share the same Server struct so they
// can reach its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/middleware"
	"github.com/pkordes/fishlog/internal/service"
)

// TripServicer defines the trip lifecycle operations the handlers depend on.
// Interfaces live in the consumer package so handler tests can inject a
// mock without touching the database or service layer.
type TripServicer interface {
	StartTrip(ctx context.Context, ownerID int64, in domain.StartTripInput) (domain.Trip, error)
	ApplyPartialUpdate(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error)
	CompleteTrip(ctx context.Context, tripID, requesterID int64, patch domain.TripPatch) (domain.Trip, error)
	CompleteActiveTrip(ctx context.Context, ownerID int64, patch domain.TripPatch) (domain.Trip, error)
	GetActiveTrip(ctx context.Context, ownerID int64) (domain.Trip, error)
	GetByID(ctx context.Context, tripID, requesterID int64) (domain.Trip, error)
	List(ctx context.Context, ownerID int64, p domain.PaginationParams) (domain.TripPage, error)
	Delete(ctx context.Context, tripID, requesterID int64) error
}

// StatsServicer computes the per-owner dashboard stats.
type StatsServicer interface {
	ComputeStats(ctx context.Context, ownerID int64) (domain.Stats, error)
}

// BuddyServicer defines the buddy operations the handlers depend on.
type BuddyServicer interface {
	AddBuddies(ctx context.Context, tripID, requesterID int64, buddyIDs []int64) (int64, error)
	ListBuddies(ctx context.Context, tripID, requesterID int64) ([]domain.User, error)
}

// CatchServicer defines the catch operations the handlers depend on.
type CatchServicer interface {
	AddCatch(ctx context.Context, tripID, requesterID int64, c domain.Catch) (domain.Catch, error)
	ListCatches(ctx context.Context, tripID, requesterID int64) ([]domain.Catch, error)
}

// AuthServicer defines the account operations the handlers depend on.
type AuthServicer interface {
	Register(ctx context.Context, in service.RegisterInput) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Me(ctx context.Context, userID int64) (domain.User, error)
	ListUsers(ctx context.Context, requesterID int64) ([]domain.User, error)
}

// WeatherFetcher returns the raw snapshots a client stores on trip start.
type WeatherFetcher interface {
	Current(ctx context.Context, lat, lon float64, date time.Time) (json.RawMessage, error)
	MoonPhase(ctx context.Context, date time.Time) (json.RawMessage, error)
}

// Services bundles the Server's dependencies.
type Services struct {
	Trips   TripServicer
	Stats   StatsServicer
	Buddies BuddyServicer
	Catches CatchServicer
	Auth    AuthServicer
	Weather WeatherFetcher
	Tokens  middleware.TokenParser
}

// Server serves every API endpoint.
type Server struct {
	trips   TripServicer
	stats   StatsServicer
	buddies BuddyServicer
	catches CatchServicer
	auth    AuthServicer
	weather WeatherFetcher
	tokens  middleware.TokenParser
	now     func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services) *Server {
	return &Server{
		trips:   svc.Trips,
		stats:   svc.Stats,
		buddies: svc.Buddies,
		catches: svc.Catches,
		auth:    svc.Auth,
		weather: svc.Weather,
		tokens:  svc.Tokens,
		now:     time.Now,
	}
}

// Routes returns the API router. Everything except health, the OpenAPI
// document, register and login requires a bearer token.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Post("/auth/register", s.Register)
	r.Post("/auth/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthenticator(s.tokens))

		r.Get("/auth/me", s.Me)
		r.Get("/users", s.ListUsers)

		r.Get("/weather", s.GetWeather)
		r.Get("/weather/lunar", s.GetLunar)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/start", s.StartTrip)
			r.Post("/complete", s.CompleteActiveTrip)
			r.Get("/active", s.GetActiveTrip)
			r.Get("/stats", s.GetStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Patch("/", s.PatchTrip)
				r.Delete("/", s.DeleteTrip)
				r.Post("/buddies", s.AddBuddies)
				r.Get("/buddies", s.ListBuddies)
				r.Post("/catches", s.AddCatch)
				r.Get("/catches", s.ListCatches)
			})
		})
	})

	return r
}
