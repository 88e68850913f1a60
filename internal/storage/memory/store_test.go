package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/moneyhive-bank/internal/models"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

func TestCreateAndFindUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "h", Balance: decimal.Zero})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = s.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "first"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "second"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "first", found.PasswordHash)
}

func TestCreateUser_ConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	s := New()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, models.User{Username: "bob", PasswordHash: "h"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, storage.ErrAlreadyExists):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestNotifications_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertNotifications(ctx, []models.Notification{
		{Message: "middle", Timestamp: base.Add(time.Hour)},
		{Message: "oldest", Timestamp: base},
		{Message: "newest", Timestamp: base.Add(2 * time.Hour)},
	}))

	var got []string
	for n, err := range s.Notifications(ctx, 0) {
		require.NoError(t, err)
		got = append(got, n.Message)
	}
	assert.Equal(t, []string{"newest", "middle", "oldest"}, got)

	got = got[:0]
	for n, err := range s.Notifications(ctx, 2) {
		require.NoError(t, err)
		got = append(got, n.Message)
	}
	assert.Equal(t, []string{"newest", "middle"}, got)
}

func TestNotifications_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	for _, err := range New().Notifications(ctx, 0) {
		calls++
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 1, calls)
}
