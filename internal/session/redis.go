package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

const DefaultRedisKey = "finance:session"

type RedisOptions struct {
	Addr string
	Key  string
	// Client overrides Addr when set.
	Client *redis.Client
}

// RedisStore keeps the session under a single key. When the session carries
// an expiry the key expires with it.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	rdb := opts.Client
	if rdb == nil {
		if opts.Addr == "" {
			return nil, errors.New("redis address is empty")
		}
		rdb = redis.NewClient(&redis.Options{Addr: opts.Addr})
	}
	key := opts.Key
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}, nil
}

func (r *RedisStore) Get(ctx context.Context) (models.Session, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("failed to read session from redis: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Session{}, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, true, nil
}

func (r *RedisStore) Set(ctx context.Context, s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	// The API decides whether a token is stale; a past or unknown expiry
	// stores the session without a TTL.
	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		if until := time.Until(s.ExpiresAt); until > 0 {
			ttl = until
		}
	}

	if err := r.rdb.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}
