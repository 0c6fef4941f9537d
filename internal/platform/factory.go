package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/cvpro/pkg/adapters/fs"
	"github.com/aretw0/cvpro/pkg/adapters/memory"
	"github.com/aretw0/cvpro/pkg/adapters/postgres"
	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/i18n"
)

// Workspace is an open CV store bound to its backend.
type Workspace struct {
	*core.Store
	backend   core.Backend
	stopWatch context.CancelFunc
}

// Backend returns the storage backend.
func (w *Workspace) Backend() core.Backend {
	return w.backend
}

// Close flushes pending saves, stops watching and releases the backend.
func (w *Workspace) Close(ctx context.Context) error {
	err := w.Store.Close(ctx)
	if w.stopWatch != nil {
		w.stopWatch()
	}
	if closer, ok := w.backend.(core.Closer); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open builds the backend, initializes it and loads the document.
// The uri is adapter-specific: a file or directory for "fs", a connection
// string for "postgres", ignored for "memory".
//
//	ws, err := platform.Open(ctx, "./cv", platform.WithVersioning(true))
func Open(ctx context.Context, uri string, opts ...Option) (*Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	backend, err := Init(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}

	tr, err := i18n.New(o.lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	store, err := core.Open(ctx, backend, core.Config{
		Translator: tr,
		Logger:     o.logger,
		SaveDelay:  o.saveDelay,
	})
	if err != nil {
		closeBackend(backend)
		return nil, err
	}

	ws := &Workspace{Store: store, backend: backend}

	watch, _ := o.config["watch"].(bool)
	if !watch {
		return ws, nil
	}
	watchable, ok := backend.(core.Watchable)
	if !ok {
		o.logger.Warn("backend cannot watch for external changes", "adapter", o.adapter)
		return ws, nil
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	if err := watchable.Watch(watchCtx, func(data string) {
		if store.Refresh(data) {
			o.logger.Info("document changed externally, reloaded")
		}
	}); err != nil {
		cancel()
		_ = ws.Close(ctx)
		return nil, fmt.Errorf("failed to start watch: %w", err)
	}
	ws.stopWatch = cancel
	return ws, nil
}

// Init builds and initializes the backend selected by the options.
func Init(ctx context.Context, uri string, opts ...Option) (core.Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// 1. Check for injected backend
	if o.backend != nil {
		return initialize(ctx, o.backend)
	}

	// 2. Build based on adapter
	key, _ := o.config["storage_key"].(string)
	var backend core.Backend
	switch o.adapter {
	case AdapterFS:
		backend = initFS(uri, o)
	case AdapterMemory:
		backend = memory.NewBackend(key)
	case AdapterPostgres:
		dsn, _ := o.config["dsn"].(string)
		if dsn == "" {
			dsn = uri
		}
		pg, err := postgres.Connect(ctx, dsn, postgres.Config{Key: key, Logger: o.logger})
		if err != nil {
			return nil, err
		}
		backend = pg
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	// 3. Run initialization
	return initialize(ctx, backend)
}

func initialize(ctx context.Context, backend core.Backend) (core.Backend, error) {
	if initializer, ok := backend.(core.Initializer); ok {
		if err := initializer.Initialize(ctx); err != nil {
			closeBackend(backend)
			return nil, err
		}
	}
	return backend, nil
}

func closeBackend(backend core.Backend) {
	if closer, ok := backend.(core.Closer); ok {
		_ = closer.Close()
	}
}

// initFS resolves the document path and builds the filesystem backend.
func initFS(uri string, o *options) *fs.Backend {
	autoInit, _ := o.config["auto_init"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	dir, file := splitDocumentPath(uri)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	useTemp := tempDir || (IsDevRun() && devSafety)
	resolvedDir := ResolveDocumentDir(dir, useTemp)
	if useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_dir", resolvedDir)
	}

	versioned, explicit := o.config["versioned"].(bool)
	if !explicit {
		versioned = hasFile(resolvedDir, ".git")
		o.logger.Debug("auto-detected versioning", "versioned", versioned)
	}

	return fs.NewBackend(fs.Config{
		Path:         filepath.Join(resolvedDir, file),
		Versioned:    versioned,
		AutoInit:     autoInit,
		MustExist:    mustExist,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
}

// splitDocumentPath accepts either a directory or a document file.
func splitDocumentPath(uri string) (dir, file string) {
	if uri == "" {
		return ".", fs.DefaultFileName
	}
	if info, err := os.Stat(uri); err == nil && info.IsDir() {
		return uri, fs.DefaultFileName
	}
	if filepath.Ext(uri) == ".json" {
		return filepath.Dir(uri), filepath.Base(uri)
	}
	return uri, fs.DefaultFileName
}
