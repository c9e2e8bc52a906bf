// Package session holds the authenticated session shared by every API call.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

// Store keeps at most one session. Set replaces the whole session at once so
// readers never observe a partially written one.
type Store interface {
	Get(ctx context.Context) (models.Session, bool, error)
	Set(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type MemoryStore struct {
	mu      sync.RWMutex
	current *models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (models.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.Session{}, false, nil
	}
	return *m.current, true, nil
}

func (m *MemoryStore) Set(_ context.Context, s models.Session) error {
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}

// Options selects and configures a Store implementation.
type Options struct {
	Backend  string
	FilePath string
	Redis    RedisOptions
}

func New(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.FilePath)
	case BackendRedis:
		return NewRedisStore(opts.Redis)
	}
	return nil, fmt.Errorf("unknown session backend %q", opts.Backend)
}
