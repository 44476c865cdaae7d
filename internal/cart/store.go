package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/apperr"
)

// Store maps a session id to that session's cart. Load on an unknown id
// returns an empty cart. Save replaces the whole cart, so two concurrent
// writers for the same session race and the last Save wins.
type Store interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	cart    Cart
	expires time.Time
}

// MemoryStore keeps carts in process. Entries idle for longer than ttl are
// dropped on next access, and Save sweeps all expired entries at most once
// per ttl. ttl <= 0 keeps them forever.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
	entries   map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return Cart{}, nil
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, sessionID)
		return Cart{}, nil
	}
	return e.cart.clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.entries[sessionID] = memoryEntry{cart: c.clone(), expires: now.Add(s.ttl)}
	return nil
}

// sweep drops expired entries. Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return
	}
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

// Len reports how many carts are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// RedisStore keeps each cart as a JSON document under cart:<session id>,
// expiring ttl after the last write.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(sessionID string) string { return "cart:" + sessionID }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.rdb.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, apperr.Storage("load cart", err)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, apperr.Storage("decode cart", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return apperr.Storage("encode cart", err)
	}
	return apperr.Storage("save cart", s.rdb.Set(ctx, redisKey(sessionID), raw, s.ttl).Err())
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return apperr.Storage("delete cart", s.rdb.Del(ctx, redisKey(sessionID)).Err())
}
