package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResponse is the stored form of a successful GET response.
type CachedResponse struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Cache is a passive store of responses, consulted only when the network
// fails.
type Cache interface {
	Get(ctx context.Context, key string) (CachedResponse, bool, error)
	Put(ctx context.Context, key string, r CachedResponse) error
}

// Key identifies a request in the cache.
func Key(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

func (c CachedResponse) response(req *http.Request) *http.Response {
	header := c.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(FallbackHeader, "true")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", c.StatusCode, http.StatusText(c.StatusCode)),
		StatusCode:    c.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(c.Body)),
		ContentLength: int64(len(c.Body)),
		Request:       req,
	}
}

const DefaultMemoryEntries = 128

type MemoryCache struct {
	lru *lruCache[CachedResponse]
}

// NewMemoryCache keeps at most maxEntries responses. ttl <= 0 never expires
// them.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &MemoryCache{lru: newLRUCache[CachedResponse](maxEntries, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (CachedResponse, bool, error) {
	r, ok := c.lru.get(key)
	return r, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, r CachedResponse) error {
	c.lru.set(key, r)
	return nil
}

func (c *MemoryCache) Len() int {
	return c.lru.size()
}

const DefaultRedisPrefix = "finance:offline:"

type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache stores responses under prefix+key. ttl <= 0 keeps them
// without expiry.
func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (CachedResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return CachedResponse{}, false, nil
	}
	if err != nil {
		return CachedResponse{}, false, fmt.Errorf("offline cache get: %w", err)
	}

	var r CachedResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return CachedResponse{}, false, fmt.Errorf("offline cache decode: %w", err)
	}
	return r, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, r CachedResponse) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("offline cache put: %w", err)
	}
	return nil
}
