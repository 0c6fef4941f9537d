package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// BackendState exposes internal state for observability.
type BackendState struct {
	Path          string     `json:"path"`
	Versioned     bool       `json:"versioned"`
	Commits       int        `json:"commits"`
	WatcherActive bool       `json:"watcher_active"`
	LastExternal  *time.Time `json:"last_external_change,omitempty"`
}

// State implements introspection.Introspectable.
func (b *Backend) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BackendState{
		Path:          b.Path,
		Versioned:     b.config.Versioned,
		Commits:       b.commits,
		WatcherActive: b.watcherActive,
		LastExternal:  b.lastExternal,
	}
}

// ComponentType implements introspection.Component.
func (b *Backend) ComponentType() string {
	return "fs-backend"
}

var _ introspection.Introspectable = (*Backend)(nil)
var _ introspection.Component = (*Backend)(nil)

func (b *Backend) setWatcherActive(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watcherActive = active
}
