package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/repo"
)

// StatsCache stores computed stats per owner under a version that every
// Invalidate advances. Get reports the owner's current version alongside the
// entry (a miss is ok == false, err == nil); Set stores stats under the
// version the caller read before computing them. An entry stored under a
// version that has since been invalidated must never be returned by Get, so
// a computation that raced a mutation cannot outlive it.
//
// Errors are logged by the caller and otherwise ignored, so a broken cache
// only costs a recomputation.
type StatsCache interface {
	Get(ctx context.Context, ownerID int64) (stats domain.Stats, version int64, ok bool, err error)
	Set(ctx context.Context, ownerID, version int64, stats domain.Stats) error
	Invalidate(ctx context.Context, ownerID int64) error
}

// NoopStatsCache never stores anything.
type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context, int64) (domain.Stats, int64, bool, error) {
	return domain.Stats{}, 0, false, nil
}
func (NoopStatsCache) Set(context.Context, int64, int64, domain.Stats) error { return nil }
func (NoopStatsCache) Invalidate(context.Context, int64) error               { return nil }

// StatsService summarises an owner's trip history.
type StatsService struct {
	trips repo.TripRepo
	cache StatsCache
}

// NewStatsService constructs a StatsService. cache may be nil.
func NewStatsService(trips repo.TripRepo, cache StatsCache) *StatsService {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	return &StatsService{trips: trips, cache: cache}
}

// ComputeStats returns the stats over every trip ownerID has, in any status.
// An owner with no trips gets zero counts and the NoReportsYet sentinels.
func (s *StatsService) ComputeStats(ctx context.Context, ownerID int64) (domain.Stats, error) {
	cached, version, ok, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		slog.WarnContext(ctx, "stats cache read failed", "owner_id", ownerID, "error", err)
	} else if ok {
		return cached, nil
	}
	// Without a version read there is nothing safe to store under.
	cacheable := err == nil

	trips, err := s.trips.ListByOwner(ctx, ownerID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.ComputeStats: %w", err)
	}

	stats := AggregateStats(trips)
	if cacheable {
		if err := s.cache.Set(ctx, ownerID, version, stats); err != nil {
			slog.WarnContext(ctx, "stats cache write failed", "owner_id", ownerID, "error", err)
		}
	}
	return stats, nil
}

// AggregateStats folds a trip list into domain.Stats. Input order does not
// matter. Mode ties go to the lexicographically smallest label.
func AggregateStats(trips []domain.Trip) domain.Stats {
	stats := domain.Stats{
		TotalReports:      len(trips),
		MostCommonSpecies: domain.NoReportsYet,
		BestLocation:      domain.NoReportsYet,
		RecentReports:     []domain.Trip{},
	}
	if len(trips) == 0 {
		return stats
	}

	species := make(map[string]int)
	locations := make(map[string]int)
	for _, t := range trips {
		if t.NumberOfFish != nil {
			stats.TotalFish += *t.NumberOfFish
		}
		if t.TargetSpecies != "" {
			species[string(t.TargetSpecies)]++
		}
		if t.Location != nil && strings.TrimSpace(*t.Location) != "" {
			locations[*t.Location]++
		}
	}
	stats.AverageFishPerTrip = float64(stats.TotalFish) / float64(len(trips))
	stats.MostCommonSpecies = mode(species)
	stats.BestLocation = mode(locations)

	sorted := slices.Clone(trips)
	slices.SortFunc(sorted, func(a, b domain.Trip) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	stats.RecentReports = sorted[:min(len(sorted), domain.RecentReportsLimit)]
	return stats
}

// mode returns the most frequent label, or NoReportsYet for an empty tally.
func mode(counts map[string]int) string {
	best, bestCount := domain.NoReportsYet, 0
	for label, n := range counts {
		if n > bestCount || (n == bestCount && label < best) {
			best, bestCount = label, n
		}
	}
	return best
}
