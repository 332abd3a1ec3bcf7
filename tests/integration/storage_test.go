//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/cart"
	"github.com/streetlayer/storefront/internal/storage"
	"github.com/streetlayer/storefront/internal/storage/postgres"
)

// startPostgres brings up a throwaway postgres container and returns its
// connection URL.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func TestPostgresStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, startPostgres(t))
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, postgres.RunMigrations(ctx, pool))
	store := postgres.NewStore(pool)

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "cart")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "jwt_token", []byte(`"tok-1"`)))

		got, err := store.Get(ctx, "jwt_token")
		require.NoError(t, err)
		assert.JSONEq(t, `"tok-1"`, string(got))

		require.NoError(t, store.Delete(ctx, "jwt_token"))
		_, err = store.Get(ctx, "jwt_token")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, store.Delete(ctx, "jwt_token"), "deleting a missing key is a no-op")
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "user", []byte(`{"id":"u1","name":"Old"}`)))
		require.NoError(t, store.Set(ctx, "user", []byte(`{"id":"u1","name":"New"}`)))

		got, err := store.Get(ctx, "user")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"u1","name":"New"}`, string(got))
	})

	t.Run("cart round trip", func(t *testing.T) {
		first := cart.NewStore(store, zap.NewNop())
		require.NoError(t, first.Add(ctx, cart.Item{ID: "tee-01", Size: "M", Quantity: 2}))

		second := cart.NewStore(store, zap.NewNop())
		require.NoError(t, second.Load(ctx))

		items := second.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
	})
}
