package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "pediatric-triage/internal/common/errors"
	"pediatric-triage/internal/common/logger"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, 30*time.Minute, logger.NewTestLogger(t)), mr
}

func TestRedisStore_MergeAccumulatesAcrossTurns(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.MergeEntities(ctx, "conv-1", Slots{
		"symptom": "发烧", "age_months": 8.0,
	})
	require.NoError(t, err)

	merged, err := store.MergeEntities(ctx, "conv-1", Slots{"duration": "1天"})
	require.NoError(t, err)

	assert.Equal(t, "发烧", merged["symptom"])
	assert.Equal(t, 8.0, merged["age_months"])
	assert.Equal(t, "1天", merged["duration"])
}

func TestRedisStore_EmptyValuesNeverErase(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.MergeEntities(ctx, "conv-1", Slots{"symptom": "发烧"})
	require.NoError(t, err)

	merged, err := store.MergeEntities(ctx, "conv-1", Slots{"symptom": "", "temperature": 0.0})
	require.NoError(t, err)
	assert.Equal(t, "发烧", merged["symptom"])
	assert.NotContains(t, merged, "temperature")
}

func TestRedisStore_NonEmptyOverwrites(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.MergeEntities(ctx, "conv-1", Slots{"temperature": 38.5})
	require.NoError(t, err)

	merged, err := store.MergeEntities(ctx, "conv-1", Slots{"temperature": 39.2})
	require.NoError(t, err)
	assert.Equal(t, 39.2, merged["temperature"])
}

func TestRedisStore_GetUnknownConversationIsEmpty(t *testing.T) {
	store, _ := setupRedisStore(t)

	slots, err := store.GetEntities(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRedisStore_ClearIsIdempotent(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.MergeEntities(ctx, "conv-1", Slots{"symptom": "发烧"})
	require.NoError(t, err)

	require.NoError(t, store.ClearEntities(ctx, "conv-1"))
	require.NoError(t, store.ClearEntities(ctx, "conv-1"))
	require.NoError(t, store.ClearEntities(ctx, "unknown"))

	slots, err := store.GetEntities(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRedisStore_SessionKeyCarriesTTL(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.MergeEntities(ctx, "conv-1", Slots{"symptom": "发烧"})
	require.NoError(t, err)

	// Idle sessions expire through the key TTL.
	mr.FastForward(31 * time.Minute)

	slots, err := store.GetEntities(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRedisStore_UnavailableBackendSurfacesStandardError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, 30*time.Minute, logger.NewNoOpLogger())

	mock.ExpectHGetAll("triage:session:conv-1").SetErr(assert.AnError)

	_, err := store.GetEntities(context.Background(), "conv-1")
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeSessionStoreUnavailable, commonerrors.CodeOf(err))
	assert.True(t, commonerrors.IsRetryable(err))
}
