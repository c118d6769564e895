package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by a Mirror when no record exists for a key.
	ErrNotFound = errors.New("cart record not found")
	// ErrClosed is reported when a mutation happens after the store was closed.
	ErrClosed = errors.New("cart store closed")
)

// Mirror is the durable storage a cart is serialized to. Each key holds a
// single record, overwritten on every save.
type Mirror interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// MemoryMirror keeps records in process memory.
type MemoryMirror struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{records: make(map[string][]byte)}
}

func (m *MemoryMirror) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

func (m *MemoryMirror) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = slices.Clone(data)
	return nil
}
