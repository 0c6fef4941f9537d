package core

import "context"

// DefaultStorageKey is the key under which the serialized document is stored.
const DefaultStorageKey = "cv_data_v5"

// Backend defines the contract for persisting the serialized document.
// A backend holds exactly one blob: the whole document, never partial fields.
// Adhering to this interface keeps the store independent of the storage
// mechanism (filesystem, SQL, memory).
type Backend interface {
	// Load returns the stored blob. ok is false when nothing has been stored yet.
	Load(ctx context.Context) (data string, ok bool, err error)

	// Store replaces the stored blob.
	Store(ctx context.Context, data string) error
}

// Initializer is implemented by backends that need setup before first use
// (create directories, git init, schema migration).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable is implemented by backends that can report external changes to
// the stored blob (e.g. the file was edited by another program).
type Watchable interface {
	Watch(ctx context.Context, onChange func(data string)) error
}

// Closer is implemented by backends holding resources (connections, watchers).
type Closer interface {
	Close() error
}
