// Package cache provides a read-through cache in front of a storage.UserStore.
//
// Lookups by id (the hot path of the auth middleware) go through an
// in-process expirable LRU and, when configured, a shared Redis layer.
// Lookups by email always reach the backing store so that registration
// and login see authoritative data. Users are immutable once created, so
// entries never need invalidation beyond their TTL.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/observability"
	"github.com/platinummonkey/authgate/pkg/storage"
)

// Cache layers, used as metric labels
const (
	LayerL1 = "l1"
	LayerL2 = "l2"
)

// Options configures a CachedUserStore
type Options struct {
	Size    int
	TTL     time.Duration
	Redis   *RedisUserCache // optional L2
	Metrics *observability.Metrics
	Logger  *observability.Logger
}

// CachedUserStore wraps a UserStore with L1/L2 caching of FindByID
type CachedUserStore struct {
	next    storage.UserStore
	l1      *lru.LRU[string, *auth.User]
	l2      *RedisUserCache
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewCachedUserStore wraps next
func NewCachedUserStore(next storage.UserStore, opts Options) *CachedUserStore {
	size := opts.Size
	if size <= 0 {
		size = 1000
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	return &CachedUserStore{
		next:    next,
		l1:      lru.NewLRU[string, *auth.User](size, nil, opts.TTL),
		l2:      opts.Redis,
		metrics: opts.Metrics,
		logger:  logger.WithField("component", "user_cache"),
	}
}

// FindByEmail always reaches the backing store
func (c *CachedUserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return c.next.FindByEmail(ctx, email)
}

// FindByID consults L1, then L2, then the backing store, populating the
// layers it missed on the way back.
func (c *CachedUserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if user, ok := c.l1.Get(id); ok {
		c.metrics.RecordCacheLookup(LayerL1, true)
		return copyUser(user), nil
	}
	c.metrics.RecordCacheLookup(LayerL1, false)

	if c.l2 != nil {
		user, err := c.l2.Get(ctx, id)
		switch {
		case err != nil:
			// Redis trouble degrades to a store read
			c.logger.WithError(err).Warn("L2 user cache read failed")
		case user != nil:
			c.metrics.RecordCacheLookup(LayerL2, true)
			c.l1.Add(id, user)
			return copyUser(user), nil
		default:
			c.metrics.RecordCacheLookup(LayerL2, false)
		}
	}

	user, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.populate(ctx, user)
	return user, nil
}

// Create writes through to the backing store and warms the cache
func (c *CachedUserStore) Create(ctx context.Context, user *auth.User) error {
	if err := c.next.Create(ctx, user); err != nil {
		return err
	}
	c.populate(ctx, user)
	return nil
}

// Len returns the number of L1 entries
func (c *CachedUserStore) Len() int {
	return c.l1.Len()
}

func (c *CachedUserStore) populate(ctx context.Context, user *auth.User) {
	c.l1.Add(user.ID, copyUser(user))
	if c.l2 != nil {
		if err := c.l2.Set(ctx, user); err != nil {
			c.logger.WithError(err).Warn("L2 user cache write failed")
		}
	}
}

func copyUser(u *auth.User) *auth.User {
	c := *u
	return &c
}
