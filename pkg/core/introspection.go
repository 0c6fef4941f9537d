package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Version      string     `json:"version"`
	LastModified string     `json:"last_modified"`
	Listeners    int        `json:"listeners"`
	SavePending  bool       `json:"save_pending"`
	Saves        int        `json:"saves"`
	LastSave     *time.Time `json:"last_save,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	BackendType  string     `json:"backend_type"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	backendType := "backend"
	// Try to get component type if the backend implements introspection.Component
	if comp, ok := s.backend.(introspection.Component); ok {
		backendType = comp.ComponentType()
	}

	state := StoreState{
		Listeners:   s.bus.Len(),
		SavePending: s.saver.Pending(),
		Saves:       s.saves,
		LastSave:    s.lastSave,
		BackendType: backendType,
	}
	state.Version, _ = s.doc[KeyVersion].(string)
	state.LastModified, _ = s.doc[KeyLastModified].(string)
	if s.lastError != nil {
		state.LastError = s.lastError.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
