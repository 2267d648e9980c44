package storage

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/auth"
)

// CachedRecordStore caches post owner and user role lookups in front of a
// RecordStore. Timestamp queries always go to the wrapped store.
type CachedRecordStore struct {
	store    analytics.RecordStore
	owners   *lru.LRU[int64, int64]
	roles    *lru.LRU[int64, auth.Role]
	l2       LookupCache
	ownerTTL time.Duration
	roleTTL  time.Duration

	hits     atomic.Int64
	misses   atomic.Int64
	l2Errors atomic.Int64
}

// NewCachedRecordStore wraps store. l2 may be nil.
func NewCachedRecordStore(store analytics.RecordStore, l2 LookupCache, cfg Config) *CachedRecordStore {
	size := cfg.LookupCacheSize
	if size < 10 {
		size = 10
	}
	ownerTTL := cfg.CacheTTL[CacheKeyPostOwner]
	roleTTL := cfg.CacheTTL[CacheKeyUserRole]

	return &CachedRecordStore{
		store:    store,
		owners:   lru.NewLRU[int64, int64](size, nil, ownerTTL),
		roles:    lru.NewLRU[int64, auth.Role](size, nil, roleTTL),
		l2:       l2,
		ownerTTL: ownerTTL,
		roleTTL:  roleTTL,
	}
}

// FindTimestamps implements analytics.RecordStore
func (c *CachedRecordStore) FindTimestamps(ctx context.Context, filter analytics.Filter) ([]time.Time, error) {
	return c.store.FindTimestamps(ctx, filter)
}

// FindPostOwner implements analytics.RecordStore
func (c *CachedRecordStore) FindPostOwner(ctx context.Context, postID int64) (int64, error) {
	if owner, ok := c.owners.Get(postID); ok {
		c.hits.Add(1)
		return owner, nil
	}

	key := fmt.Sprintf("%s:%d", CacheKeyPostOwner, postID)
	if owner, ok := c.getL2(ctx, key); ok {
		c.owners.Add(postID, owner)
		c.hits.Add(1)
		return owner, nil
	}
	c.misses.Add(1)

	owner, err := c.store.FindPostOwner(ctx, postID)
	if err != nil {
		return 0, err
	}

	c.owners.Add(postID, owner)
	c.setL2(ctx, key, owner, c.ownerTTL)
	return owner, nil
}

// FindUserRole implements analytics.RecordStore
func (c *CachedRecordStore) FindUserRole(ctx context.Context, userID int64) (auth.Role, error) {
	if role, ok := c.roles.Get(userID); ok {
		c.hits.Add(1)
		return role, nil
	}

	key := fmt.Sprintf("%s:%d", CacheKeyUserRole, userID)
	if id, ok := c.getL2(ctx, key); ok {
		if role, err := auth.ParseRoleID(int(id)); err == nil {
			c.roles.Add(userID, role)
			c.hits.Add(1)
			return role, nil
		}
	}
	c.misses.Add(1)

	role, err := c.store.FindUserRole(ctx, userID)
	if err != nil {
		return 0, err
	}

	c.roles.Add(userID, role)
	c.setL2(ctx, key, int64(role.ID()), c.roleTTL)
	return role, nil
}

// Stats returns cache hit and miss counts
func (c *CachedRecordStore) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// L2Errors returns the number of failed shared cache reads and writes
func (c *CachedRecordStore) L2Errors() int64 {
	return c.l2Errors.Load()
}

// Purge clears the in-process cache
func (c *CachedRecordStore) Purge() {
	c.owners.Purge()
	c.roles.Purge()
}

// L2 failures degrade to a store lookup
func (c *CachedRecordStore) getL2(ctx context.Context, key string) (int64, bool) {
	if c.l2 == nil {
		return 0, false
	}
	value, found, err := c.l2.GetInt64(ctx, key)
	if err != nil {
		c.l2Errors.Add(1)
		return 0, false
	}
	if !found {
		return 0, false
	}
	return value, true
}

func (c *CachedRecordStore) setL2(ctx context.Context, key string, value int64, ttl time.Duration) {
	if c.l2 == nil {
		return
	}
	if err := c.l2.SetInt64(ctx, key, value, ttl); err != nil {
		c.l2Errors.Add(1)
	}
}
