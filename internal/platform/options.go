package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/cvpro/pkg/core"
)

// Backend names accepted by WithAdapter.
const (
	AdapterFS       = "fs"
	AdapterMemory   = "memory"
	AdapterPostgres = "postgres"
)

// options holds the internal configuration for a CV workspace.
type options struct {
	backend   core.Backend
	logger    *slog.Logger
	adapter   string
	lang      string
	saveDelay time.Duration
	config    map[string]interface{}
}

// Option defines a functional option for configuring a CV workspace.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: AdapterFS,
		config:  make(map[string]interface{}),
	}
}

// WithAutoInit enables automatic initialization (creates the directory and,
// when versioning is on, runs git init).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables committing every save to git.
// When unset, versioning is on if the document directory is a git repository.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioned"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the document directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the store and its backend.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBackend injects a custom storage backend.
// If provided, the adapter selected by WithAdapter is skipped.
func WithBackend(backend core.Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithAdapter selects the storage backend by name ("fs", "memory", "postgres").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithDSN sets the postgres connection string. Without it the URI given to
// Open is used.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.config["dsn"] = dsn
	}
}

// WithStorageKey sets the key the document is stored under (memory and
// postgres backends).
func WithStorageKey(key string) Option {
	return func(o *options) {
		o.config["storage_key"] = key
	}
}

// WithLang selects the language of placeholder content and labels.
func WithLang(lang string) Option {
	return func(o *options) {
		o.lang = lang
	}
}

// WithSaveDelay sets the debounce window for scheduled saves.
func WithSaveDelay(d time.Duration) Option {
	return func(o *options) {
		o.saveDelay = d
	}
}

// WithWatch re-imports the document when another process changes it.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.config["watch"] = enabled
	}
}

// WithWatcherErrorHandler registers a callback for errors raised by the watch
// loop (e.g. permission denied), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) the document is redirected to a temporary
// directory so development runs never overwrite a real CV.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
