// Package fs stores the CV document as a file, optionally versioned with git
// and watched for external edits.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/git"
)

// DefaultFileName is the document file created when only a directory is given.
const DefaultFileName = "cv.json"

// Backend implements core.Backend on a single file.
type Backend struct {
	Path   string
	git    *git.Client
	config Config

	watchMu    sync.Mutex
	supervisor stopper

	mu            sync.RWMutex
	lastWritten   string
	watcherActive bool
	lastExternal  *time.Time
	commits       int
}

// Config holds the configuration for the filesystem backend.
type Config struct {
	Path         string // Path of the document file.
	Versioned    bool   // Commit every write to git.
	AutoInit     bool   // Run git init when the directory is not a repository.
	MustExist    bool   // Fail instead of creating the directory.
	Logger       *slog.Logger
	ErrorHandler func(error)
}

type stopper interface {
	Stop(ctx context.Context) error
}

// NewBackend creates a new filesystem-backed store.
func NewBackend(config Config) *Backend {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Path == "" {
		config.Path = DefaultFileName
	}
	return &Backend{
		Path:   config.Path,
		git:    git.NewClient(filepath.Dir(config.Path), config.Logger),
		config: config,
	}
}

// Initialize performs the necessary setup (mkdir, git init).
func (b *Backend) Initialize(ctx context.Context) error {
	dir := filepath.Dir(b.Path)

	// 1. Directory Initialization
	if b.config.MustExist {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		if err != nil {
			return fmt.Errorf("failed to stat directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", dir)
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 2. Git Initialization
	if !b.config.Versioned {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if b.git.IsRepo() {
		return nil
	}
	if !b.config.AutoInit {
		return fmt.Errorf("path is not a git repository: %s", dir)
	}
	if err := b.git.Init(); err != nil {
		return fmt.Errorf("failed to git init: %w", err)
	}
	b.config.Logger.Info("initialized git repository", "dir", dir)
	return nil
}

// Load reads the document file. A missing file is not an error.
func (b *Backend) Load(ctx context.Context) (string, bool, error) {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", b.Path, err)
	}

	b.mu.Lock()
	b.lastWritten = string(data)
	b.mu.Unlock()

	return string(data), true, nil
}

// Store writes the document atomically and, when versioned, commits it.
func (b *Backend) Store(ctx context.Context, data string) error {
	// Recorded before the rename so the watcher event it causes is recognized.
	b.mu.Lock()
	previous := b.lastWritten
	b.lastWritten = data
	b.mu.Unlock()

	if err := writeFileAtomic(b.Path, []byte(data), 0644); err != nil {
		b.mu.Lock()
		if b.lastWritten == data {
			b.lastWritten = previous
		}
		b.mu.Unlock()
		return err
	}

	if !b.config.Versioned {
		return nil
	}
	return b.commit(ctx)
}

func (b *Backend) commit(ctx context.Context) error {
	unlock, err := b.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	name := filepath.Base(b.Path)
	status, err := b.git.Status(name)
	if err != nil {
		return fmt.Errorf("failed to check git status: %w", err)
	}
	if status == "" {
		return nil
	}

	if err := b.git.Add(name); err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	msg := git.FormatCommitMessage(git.CommitTypeDocs, "cv", "update "+name, "")
	if err := b.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}

	b.mu.Lock()
	b.commits++
	b.mu.Unlock()
	return nil
}

// History returns the commit log of the document file, newest first.
func (b *Backend) History(limit int) ([]string, error) {
	if !b.config.Versioned {
		return nil, fmt.Errorf("history requires a versioned backend")
	}
	return b.git.Log(filepath.Base(b.Path), limit)
}

// Watch starts a supervised background worker that calls onChange with the
// file contents whenever another program changes the file. Writes made
// through Store are not reported. A failing watcher is restarted with
// backoff. The worker stops when ctx is done or on Close.
func (b *Backend) Watch(ctx context.Context, onChange func(data string)) error {
	b.watchMu.Lock()
	defer b.watchMu.Unlock()
	if b.supervisor != nil {
		return fmt.Errorf("watcher already running")
	}

	spec := supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(b, onChange), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   30 * time.Second,
			MaxRestarts:     5,
			MaxDuration:     time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("cv-watcher", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	b.supervisor = sup
	return nil
}

// Close stops the watcher, if any.
func (b *Backend) Close() error {
	b.watchMu.Lock()
	sup := b.supervisor
	b.supervisor = nil
	b.watchMu.Unlock()

	if sup == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sup.Stop(ctx)
}

// isOwnWrite reports whether data is what this backend last wrote or read.
func (b *Backend) isOwnWrite(data string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return data == b.lastWritten
}

func (b *Backend) markExternal(data string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastWritten = data
	now := time.Now()
	b.lastExternal = &now
}

var (
	_ core.Backend     = (*Backend)(nil)
	_ core.Initializer = (*Backend)(nil)
	_ core.Watchable   = (*Backend)(nil)
	_ core.Closer      = (*Backend)(nil)
)
