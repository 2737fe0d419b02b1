package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"budgetwise/internal/cache"
	"budgetwise/internal/core"
	"budgetwise/internal/ports"
)

// Directory resolves caller identities to users. Users are immutable once
// created, so successful lookups are cached; misses are not.
type Directory struct {
	users ports.UserStore
	cache *cache.LRUCache[core.User]
	group singleflight.Group
}

var _ ports.UserResolver = (*Directory)(nil)

func NewDirectory(users ports.UserStore, size int, ttl time.Duration) *Directory {
	return &Directory{
		users: users,
		cache: cache.NewLRUCache[core.User](size, ttl),
	}
}

func (d *Directory) ResolveUser(ctx context.Context, id core.Identity) (core.User, error) {
	key := string(id)
	if key == "" {
		return core.User{}, core.ErrUserNotFound
	}
	if u, ok := d.cache.Get(key); ok {
		return u, nil
	}

	// The lookup is shared by every caller waiting on key, so it must not
	// inherit the first caller's cancellation.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := d.group.Do(key, func() (interface{}, error) {
		u, err := d.users.FindUserByEmail(lookupCtx, key)
		if err != nil {
			return core.User{}, err
		}
		d.cache.Set(key, u)
		return u, nil
	})
	if err != nil {
		return core.User{}, fmt.Errorf("resolve caller: %w", err)
	}
	return v.(core.User), nil
}

// Cache exposes the backing cache so it can be registered for sweeping.
func (d *Directory) Cache() *cache.LRUCache[core.User] {
	return d.cache
}
