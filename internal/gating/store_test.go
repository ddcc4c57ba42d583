// internal/gating/store_test.go
package gating

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "wish:session:", time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	saved := &Session{
		ID:            "sess-1",
		QuestionsUsed: 2,
		MaxFree:       3,
		Upgraded:      false,
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestRedisStoreUnknownSession(t *testing.T) {
	store, _ := newRedisStore(t)

	loaded, err := store.Load(context.Background(), "never-seen")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStoreKeyAndTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "sess-1", MaxFree: 3}))

	assert.True(t, mr.Exists("wish:session:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("wish:session:sess-1"))
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "sess-1", QuestionsUsed: 3, MaxFree: 3}))
	mr.FastForward(2 * time.Hour)

	loaded, err := store.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestGateAgainstRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	gate := NewGate(store, 3, logger.NewTestLogger(t))
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		session, err := gate.Accept(ctx, "sess-r")
		require.NoError(t, err)
		assert.Equal(t, want, session.QuestionsUsed)
		gate.Release("sess-r")
	}

	_, err := gate.Accept(ctx, "sess-r")
	assert.Error(t, err)
}
