package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/moneyhive-bank/internal/models"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

// TestStoreIntegration exercises the JSONB store against a live Postgres.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run this integration test")
	}
	for _, path := range []string{".env", "../.env", "../../.env", "../../../.env"} {
		_ = godotenv.Overload(path)
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close(ctx)

	username := fmt.Sprintf("pgtest_%d", time.Now().UnixNano())
	created, err := store.CreateUser(ctx, models.User{Username: username, PasswordHash: "h", Balance: decimal.Zero})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = store.CreateUser(ctx, models.User{Username: username, PasswordHash: "other"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := store.FindByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "h", found.PasswordHash)
	assert.True(t, found.Balance.Equal(decimal.Zero))

	_, err = store.FindByUsername(ctx, username+"_missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	far := time.Now().Add(24 * 365 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, store.InsertNotifications(ctx, []models.Notification{
		{Message: username + "-old", Timestamp: far},
		{Message: username + "-new", Timestamp: far.Add(time.Minute)},
	}))

	var got []string
	for n, err := range store.Notifications(ctx, 2) {
		require.NoError(t, err)
		got = append(got, n.Message)
	}
	assert.Equal(t, []string{username + "-new", username + "-old"}, got)
}
