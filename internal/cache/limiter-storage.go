package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultLimiterCapacity = 10000

// LimiterStorage is a fiber.Storage backed by a bounded LRU, so the per-IP
// counters of the rate limiter cannot grow without limit.
type LimiterStorage struct {
	lru *expirable.LRU[string, []byte]
}

// NewLimiterStorage keeps at most capacity keys, each for at most ttl.
func NewLimiterStorage(capacity int, ttl time.Duration) *LimiterStorage {
	if capacity <= 0 {
		capacity = DefaultLimiterCapacity
	}
	return &LimiterStorage{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

func (s *LimiterStorage) Get(key string) ([]byte, error) {
	if len(key) == 0 {
		return nil, nil
	}
	v, ok := s.lru.Get(key)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Set ignores the per-key expiry; the limiter stores its own window timestamps
// and the LRU ttl only bounds how long an idle key is retained.
func (s *LimiterStorage) Set(key string, val []byte, _ time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	s.lru.Add(key, cp)
	return nil
}

func (s *LimiterStorage) Delete(key string) error {
	s.lru.Remove(key)
	return nil
}

func (s *LimiterStorage) Reset() error {
	s.lru.Purge()
	return nil
}

func (s *LimiterStorage) Close() error {
	return nil
}
