// Package memory provides a process-local backend, used for tests and for
// ephemeral sessions (cvpro serve --backend memory).
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/cvpro/pkg/core"
)

// Backend keeps blobs in a map keyed by storage key.
type Backend struct {
	mu    sync.RWMutex
	key   string
	blobs map[string]string
}

// NewBackend creates an empty backend storing under key.
// An empty key uses core.DefaultStorageKey.
func NewBackend(key string) *Backend {
	if key == "" {
		key = core.DefaultStorageKey
	}
	return &Backend{key: key, blobs: make(map[string]string)}
}

// Load implements core.Backend.
func (b *Backend) Load(ctx context.Context) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[b.key]
	return data, ok, nil
}

// Store implements core.Backend.
func (b *Backend) Store(ctx context.Context, data string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[b.key] = data
	return nil
}

// Seed pre-populates the stored blob.
func (b *Backend) Seed(data string) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[b.key] = data
	return b
}

var _ core.Backend = (*Backend)(nil)
