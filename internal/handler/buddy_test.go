package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/handler"
)

func TestAddBuddies_201(t *testing.T) {
	svc := &mockBuddyServicer{
		addBuddies: func(_ context.Context, tripID, requester int64, ids []int64) (int64, error) {
			assert.Equal(t, int64(11), tripID)
			assert.Equal(t, ownerID, requester)
			assert.Equal(t, []int64{2, 3, 3}, ids)
			return 2, nil
		},
	}
	h := newHTTPHandler(handler.Services{Buddies: svc})

	rec := do(t, h, http.MethodPost, "/trips/11/buddies", map[string]any{"buddy_ids": []int64{2, 3, 3}})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"added":2}`, rec.Body.String())
}

func TestAddBuddies_400_UnknownUsers(t *testing.T) {
	svc := &mockBuddyServicer{
		addBuddies: func(context.Context, int64, int64, []int64) (int64, error) {
			return 0, fmt.Errorf("%w: unknown users: 404", domain.ErrValidation)
		},
	}
	h := newHTTPHandler(handler.Services{Buddies: svc})

	rec := do(t, h, http.MethodPost, "/trips/11/buddies", map[string]any{"buddy_ids": []int64{404}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown users: 404", decodeError(t, rec).Message)
}

func TestAddBuddies_403_NotOwner(t *testing.T) {
	svc := &mockBuddyServicer{
		addBuddies: func(context.Context, int64, int64, []int64) (int64, error) {
			return 0, fmt.Errorf("service.BuddyService.AddBuddies: %w: trip belongs to another user", domain.ErrForbidden)
		},
	}
	h := newHTTPHandler(handler.Services{Buddies: svc})

	rec := do(t, h, http.MethodPost, "/trips/11/buddies", map[string]any{"buddy_ids": []int64{2}})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListBuddies_200(t *testing.T) {
	svc := &mockBuddyServicer{
		listBuddies: func(context.Context, int64, int64) ([]domain.User, error) {
			return []domain.User{{ID: 2, Name: "Anna", Email: "anna@example.com", PasswordHash: "secret-hash"}}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Buddies: svc})

	rec := do(t, h, http.MethodGet, "/trips/11/buddies", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Anna"`)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}
