package session

import (
	"context"
	"time"

	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/redis"
	"github.com/kbukum/deskhub/role"
)

// DefaultKeyPrefix is the Redis key prefix; keys look like deskhub:session:vendor.
const DefaultKeyPrefix = "deskhub"

// RedisStore keeps sessions and their credential cookies in Redis so
// several processes share one login state. Both expire after ttl when it
// is positive; Logout removes both.
type RedisStore struct {
	store *redis.TypedStore[Session]
	creds *redis.TypedStore[[]Credential]
	ttl   time.Duration
	log   *logger.Logger
}

var (
	_ Store           = (*RedisStore)(nil)
	_ CredentialStore = (*RedisStore)(nil)
)

// NewRedisStore creates a store under prefix (DefaultKeyPrefix when empty).
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{
		store: redis.NewTypedStore[Session](client, prefix+":session"),
		creds: redis.NewTypedStore[[]Credential](client, prefix+":credentials"),
		ttl:   ttl,
		log:   logger.WithComponent("session.redis"),
	}
}

func (r *RedisStore) Login(ctx context.Context, s Session) error {
	if err := validate(s); err != nil {
		return err
	}
	return r.store.Save(ctx, string(s.Role), &s, r.ttl)
}

func (r *RedisStore) Logout(ctx context.Context, rl role.Role) error {
	existed, err := r.store.Delete(ctx, string(rl))
	if err != nil {
		return err
	}
	if _, err := r.creds.Delete(ctx, string(rl)); err != nil {
		return err
	}
	if existed {
		r.log.Debug("Session removed", map[string]interface{}{logger.FieldRole: rl.String()})
	}
	return nil
}

func (r *RedisStore) Current(ctx context.Context, rl role.Role) (*Session, error) {
	return r.store.Load(ctx, string(rl))
}

// SaveCredentials stores the credential cookies of rl.
func (r *RedisStore) SaveCredentials(ctx context.Context, rl role.Role, creds []Credential) error {
	return r.creds.Save(ctx, string(rl), &creds, r.ttl)
}

// Credentials returns the stored credential cookies of rl, nil when none.
func (r *RedisStore) Credentials(ctx context.Context, rl role.Role) ([]Credential, error) {
	creds, err := r.creds.Load(ctx, string(rl))
	if err != nil || creds == nil {
		return nil, err
	}
	return *creds, nil
}
