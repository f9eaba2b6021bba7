package mockapi

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/deskhub/redis"
)

// Blacklist records revoked token IDs until the token would have expired.
type Blacklist interface {
	Add(ctx context.Context, id string, until time.Time) error
	Contains(ctx context.Context, id string) (bool, error)
}

// MemoryBlacklist keeps revoked IDs in process.
type MemoryBlacklist struct {
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryBlacklist creates an empty blacklist. A nil clock means time.Now.
func NewMemoryBlacklist(now func() time.Time) *MemoryBlacklist {
	if now == nil {
		now = time.Now
	}
	return &MemoryBlacklist{now: now, entries: make(map[string]time.Time)}
}

// Add revokes id until the given time.
func (b *MemoryBlacklist) Add(_ context.Context, id string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.purge()
	b.entries[id] = until
	return nil
}

// Contains reports whether id is revoked.
func (b *MemoryBlacklist) Contains(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.entries[id]
	if !ok {
		return false, nil
	}
	if !b.now().Before(until) {
		delete(b.entries, id)
		return false, nil
	}
	return true, nil
}

// Len returns the number of live entries.
func (b *MemoryBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.purge()
	return len(b.entries)
}

func (b *MemoryBlacklist) purge() {
	now := b.now()
	for id, until := range b.entries {
		if !now.Before(until) {
			delete(b.entries, id)
		}
	}
}

// RedisBlacklist shares revoked IDs between backend instances. Entries
// expire with the token through the key TTL.
type RedisBlacklist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisBlacklist creates a blacklist storing keys under prefix.
func NewRedisBlacklist(client *redis.Client, prefix string) *RedisBlacklist {
	if prefix == "" {
		prefix = "deskhub:blacklist"
	}
	return &RedisBlacklist{client: client, prefix: prefix, now: time.Now}
}

func (b *RedisBlacklist) key(id string) string {
	return b.prefix + ":" + id
}

// Add revokes id until the given time. Tokens already past until are
// ignored.
func (b *RedisBlacklist) Add(ctx context.Context, id string, until time.Time) error {
	ttl := until.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.key(id), "1", ttl)
}

// Contains reports whether id is revoked.
func (b *RedisBlacklist) Contains(ctx context.Context, id string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(id))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
