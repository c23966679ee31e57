package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental/internal/domain"
	"rental/internal/repository"
)

func TestSessionRepository_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "s1", State: domain.SessionStateEmpty}))

	// Two writers load the same copy.
	a, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	b, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)

	a.Version++
	a.State = domain.SessionStateVehicleChosen
	require.NoError(t, repo.Update(ctx, a))

	b.Version++
	b.Processing = true
	assert.ErrorIs(t, repo.Update(ctx, b), repository.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	assert.Equal(t, domain.SessionStateVehicleChosen, stored.State)
	assert.False(t, stored.Processing, "losing write must not land")
}

func TestSessionRepository_UpdateExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Minute)
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "s1"}))
	now = now.Add(2 * time.Minute)

	assert.ErrorIs(t, repo.Update(ctx, &domain.Session{ID: "s1", Version: 1}), repository.ErrNotFound)
	_, err := repo.GetByID(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(0)
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "s1", Customer: &domain.CustomerDetails{Name: "Jane"}}))

	got, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	got.Customer.Name = "changed"

	again, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.Customer.Name)
}
