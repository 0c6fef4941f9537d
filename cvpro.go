package cvpro

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/cvpro/internal/platform"
	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/git"
)

// --- Types ---

// Workspace is an open CV store bound to its backend.
type Workspace = platform.Workspace

// Document is the root of the CV tree.
type Document = core.Document

// Event represents a change in the document.
type Event = core.Event

// --- Configuration ---

// Option defines a functional option for configuring a workspace.
type Option = platform.Option

// WithAutoInit enables automatic initialization (mkdir and git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables committing every save to git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the document directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the store and its backend.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithBackend injects a custom storage backend.
func WithBackend(backend core.Backend) Option {
	return platform.WithBackend(backend)
}

// WithAdapter selects the storage backend by name ("fs", "memory", "postgres").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithDSN sets the postgres connection string.
func WithDSN(dsn string) Option {
	return platform.WithDSN(dsn)
}

// WithStorageKey sets the key the document is stored under.
func WithStorageKey(key string) Option {
	return platform.WithStorageKey(key)
}

// WithLang selects the language of placeholder content and labels.
func WithLang(lang string) Option {
	return platform.WithLang(lang)
}

// WithSaveDelay sets the debounce window for scheduled saves.
func WithSaveDelay(d time.Duration) Option {
	return platform.WithSaveDelay(d)
}

// WithWatch re-imports the document when another process changes it.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithWatcherErrorHandler registers a callback for watch loop errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithDevSafety controls the temp-dir sandbox used under `go run`/`go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// Open creates a workspace for the document at uri.
func Open(ctx context.Context, uri string, opts ...Option) (*Workspace, error) {
	return platform.Open(ctx, uri, opts...)
}

// Init builds and initializes a backend explicitly.
func Init(ctx context.Context, uri string, opts ...Option) (core.Backend, error) {
	return platform.Init(ctx, uri, opts...)
}

// FindRoot looks upwards from dir for a directory holding cv.json or .git.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// --- Commit Helpers ---

const (
	CommitTypeFeat  = git.CommitTypeFeat
	CommitTypeFix   = git.CommitTypeFix
	CommitTypeDocs  = git.CommitTypeDocs
	CommitTypeChore = git.CommitTypeChore
)

// FormatCommitMessage builds a conventional commit message with the cvpro footer.
func FormatCommitMessage(ctype, scope, subject, body string) string {
	return git.FormatCommitMessage(ctype, scope, subject, body)
}
