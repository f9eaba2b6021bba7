// Package redis wraps go-redis with deskhub logging, configuration
// conventions and component lifecycle.
//
// TypedStore stores JSON values under a key prefix; session.RedisStore is
// built on it:
//
//	client, err := redis.New(cfg, log)
//	store := redis.NewTypedStore[session.Session](client, "deskhub:session")
//	err = store.Save(ctx, "vendor", &s, 24*time.Hour)
package redis
