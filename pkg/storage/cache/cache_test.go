package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/observability"
	"github.com/platinummonkey/authgate/pkg/storage"
)

// countingStore counts FindByID calls that reach the backing store
type countingStore struct {
	*storage.MemoryStore
	findByID int
}

func (s *countingStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	s.findByID++
	return s.MemoryStore.FindByID(ctx, id)
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func seedUser(t *testing.T, store storage.UserStore) *auth.User {
	t.Helper()
	user := &auth.User{Name: "Ann", Email: "ann@x.io", PasswordHash: "$2a$04$digest"}
	require.NoError(t, store.Create(context.Background(), user))
	return user
}

func TestCachedUserStore_L1(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{MemoryStore: storage.NewMemoryStore()}
	user := seedUser(t, backing)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cached := NewCachedUserStore(backing, Options{Size: 10, TTL: time.Minute, Metrics: metrics})

	for i := 0; i < 3; i++ {
		got, err := cached.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
	}

	assert.Equal(t, 1, backing.findByID)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues(LayerL1)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues(LayerL1)))
}

func TestCachedUserStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemoryStore()
	user := seedUser(t, backing)
	cached := NewCachedUserStore(backing, Options{Size: 10, TTL: time.Minute})

	first, err := cached.FindByID(ctx, user.ID)
	require.NoError(t, err)
	first.Name = "mutated"

	second, err := cached.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", second.Name)
}

func TestCachedUserStore_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{MemoryStore: storage.NewMemoryStore()}
	cached := NewCachedUserStore(backing, Options{Size: 10, TTL: time.Minute})

	_, err := cached.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	_, err = cached.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.Equal(t, 2, backing.findByID)
	assert.Equal(t, 0, cached.Len())
}

func TestCachedUserStore_CreateWarmsCache(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{MemoryStore: storage.NewMemoryStore()}
	cached := NewCachedUserStore(backing, Options{Size: 10, TTL: time.Minute})

	user := seedUser(t, cached)
	got, err := cached.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, 0, backing.findByID)

	err = cached.Create(ctx, &auth.User{Name: "Ann", Email: "ann@x.io", PasswordHash: "x"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestCachedUserStore_L2(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniredis(t)

	backing := &countingStore{MemoryStore: storage.NewMemoryStore()}
	user := seedUser(t, backing)
	l2 := NewRedisUserCache(client, time.Minute)

	first := NewCachedUserStore(backing, Options{Size: 10, TTL: time.Minute, Redis: l2})
	_, err := first.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(userKey(user.ID)))

	// a second replica with a cold L1 is served from Redis
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	second := NewCachedUserStore(backing, Options{Size: 10, TTL: time.Minute, Redis: l2, Metrics: metrics})
	got, err := second.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.Equal(t, 1, backing.findByID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues(LayerL2)))
}

func TestCachedUserStore_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniredis(t)

	backing := storage.NewMemoryStore()
	user := seedUser(t, backing)

	var logs bytes.Buffer
	cached := NewCachedUserStore(backing, Options{
		Size:   10,
		TTL:    time.Minute,
		Redis:  NewRedisUserCache(client, time.Minute),
		Logger: observability.NewLogger(observability.DebugLevel, &logs),
	})

	mr.Close()

	got, err := cached.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Contains(t, logs.String(), "L2 user cache")
}

func TestRedisUserCache(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniredis(t)
	c := NewRedisUserCache(client, time.Minute)

	miss, err := c.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &auth.User{ID: "u-1", Name: "Ann", Email: "ann@x.io", PasswordHash: "h", Role: auth.RoleUser, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, c.Set(ctx, user))
	assert.Equal(t, time.Minute, mr.TTL(userKey("u-1")))

	got, err := c.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.NoError(t, c.Invalidate(ctx, "u-1"))
	assert.False(t, mr.Exists(userKey("u-1")))
}

func TestRedisUserCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniredis(t)
	c := NewRedisUserCache(client, time.Minute)

	require.NoError(t, mr.Set(userKey("u-1"), "{not json"))

	_, err := c.Get(ctx, "u-1")
	assert.Error(t, err)
	assert.False(t, mr.Exists(userKey("u-1")), "corrupt entry should be dropped")
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := storage.DefaultConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewRedisClient_Errors(t *testing.T) {
	cfg := storage.DefaultConfig()
	cfg.RedisURL = "not a url"
	_, err := NewRedisClient(context.Background(), cfg)
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg.RedisURL = "redis://" + mr.Addr()
	mr.Close()

	_, err = NewRedisClient(context.Background(), cfg)
	assert.Error(t, err)
}
