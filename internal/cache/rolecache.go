// Package cache holds the process-local, time-bounded caches used by the
// request-handling layer. Neither is a source of truth; both reset on restart.
package cache

import (
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultRoleCapacity = 1024
	DefaultRoleTTL      = 5 * time.Minute
)

// RoleLoader fetches the authoritative role when the cache misses.
type RoleLoader func(userID string) (domain.UserRole, error)

type RoleCache struct {
	lru  *expirable.LRU[string, domain.UserRole]
	load RoleLoader
}

func NewRoleCache(capacity int, ttl time.Duration, load RoleLoader) *RoleCache {
	if capacity <= 0 {
		capacity = DefaultRoleCapacity
	}
	if ttl <= 0 {
		ttl = DefaultRoleTTL
	}
	return &RoleCache{
		lru:  expirable.NewLRU[string, domain.UserRole](capacity, nil, ttl),
		load: load,
	}
}

// Role returns the cached role for userID, loading and caching it on a miss.
func (c *RoleCache) Role(userID string) (domain.UserRole, error) {
	if role, ok := c.lru.Get(userID); ok {
		return role, nil
	}
	role, err := c.load(userID)
	if err != nil {
		return "", err
	}
	c.lru.Add(userID, role)
	return role, nil
}

func (c *RoleCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}

func (c *RoleCache) Len() int {
	return c.lru.Len()
}
