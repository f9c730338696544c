package repo_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/repo"
)

var userSeq atomic.Int64

func ptr[T any](v T) *T { return &v }

// createUser inserts a user with a unique email inside tx.
func createUser(t *testing.T, tx pgx.Tx, name string) domain.User {
	t.Helper()
	u, err := repo.NewUserRepo(tx).Create(context.Background(), domain.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%d-%d@example.com", name, time.Now().UnixNano(), userSeq.Add(1)),
		PasswordHash: "hash",
	})
	require.NoError(t, err, "create user")
	return u
}

// tripFixture returns an active phase-1 trip owned by userID.
func tripFixture(userID int64) domain.Trip {
	return domain.Trip{
		UserID:          userID,
		TargetSpecies:   domain.SpeciesPike,
		Date:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Location:        ptr("Lake Vänern"),
		Latitude:        ptr(58.9),
		Longitude:       ptr(13.2),
		Status:          domain.TripStatusActive,
		NumberOfPersons: 2,
	}
}
