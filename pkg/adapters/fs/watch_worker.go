package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/cvpro/pkg/core"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 50 * time.Millisecond

type watchWorker struct {
	*worker.BaseWorker
	backend   *Backend
	onChange  func(data string)
	watcher   *fsnotify.Watcher
	debouncer *core.Debouncer
	cancel    context.CancelFunc
	checkMu   sync.Mutex
}

func newWatchWorker(backend *Backend, onChange func(data string)) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		backend:    backend,
		onChange:   onChange,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: atomic saves replace the file, which drops a
	// watch placed on the file itself.
	dir := filepath.Dir(w.backend.Path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if w.backend.config.Versioned {
		_ = watcher.Add(filepath.Join(dir, ".git"))
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.watcher = watcher
	w.debouncer = core.NewDebouncer(watchDebounce, func() { w.check(runCtx) })
	w.backend.setWatcherActive(true)

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"path":              w.backend.Path,
		}
	})
}

// check reads the file and reports it when it differs from what the backend
// last wrote or read.
func (w *watchWorker) check(ctx context.Context) {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	logger := w.backend.config.Logger

	data, err := os.ReadFile(w.backend.Path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("document file removed externally", "path", w.backend.Path)
		return
	}
	if err != nil {
		w.reportError(fmt.Errorf("failed to read %s: %w", w.backend.Path, err))
		return
	}
	if w.backend.isOwnWrite(string(data)) {
		logger.Debug("ignoring own write", "path", w.backend.Path)
		return
	}

	w.backend.markExternal(string(data))
	logger.Info("document changed externally", "path", w.backend.Path)
	w.onChange(string(data))
}

// handleGitLockEvent processes .git/index.lock events (git operations pause/resume).
// Returns true if event was handled, false if should continue processing.
func (w *watchWorker) handleGitLockEvent(event fsnotify.Event, gitLocked *bool) (handled bool, gitLockedNew bool) {
	gitLockedNew = *gitLocked

	if filepath.Base(event.Name) != "index.lock" || filepath.Base(filepath.Dir(event.Name)) != ".git" {
		return false, gitLockedNew
	}

	if event.Has(fsnotify.Create) {
		gitLockedNew = true
		w.backend.config.Logger.Debug("git operations detected, pausing watcher")
	} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		gitLockedNew = false
		w.backend.config.Logger.Debug("git operations finished, rechecking document")
	}
	return true, gitLockedNew
}

// recheckAfterGitUnlock catches a checkout or merge that rewrote the file
// while events were paused.
func (w *watchWorker) recheckAfterGitUnlock(ctx context.Context) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		w.check(ctx)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.reportError(fmt.Errorf("recheck panic: %w", err))
	}))
}

// isDocumentEvent filters events down to writes of the document file.
func (w *watchWorker) isDocumentEvent(event fsnotify.Event) bool {
	if isTempFile(event.Name) {
		return false
	}
	if filepath.Clean(event.Name) != filepath.Clean(w.backend.Path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *watchWorker) reportError(err error) {
	if w.backend.config.ErrorHandler != nil {
		w.backend.config.ErrorHandler(err)
		return
	}
	w.backend.config.Logger.Error("watcher error", "error", err)
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.backend.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)

			// Full stack only when debug logging is on.
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.backend.setWatcherActive(false)
	defer w.watcher.Close()

	var gitLocked bool
	err = w.mainEventLoop(ctx, &gitLocked)

	// Wait for an in-flight check so no callback runs after Stop returns.
	w.debouncer.Stop(5 * time.Second)

	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context, gitLocked *bool) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			if handled, newGitLocked := w.handleGitLockEvent(event, gitLocked); handled {
				wasLocked := *gitLocked
				*gitLocked = newGitLocked
				if wasLocked && !*gitLocked {
					w.recheckAfterGitUnlock(ctx)
				}
				continue
			}

			if *gitLocked || !w.isDocumentEvent(event) {
				continue
			}
			w.debouncer.Trigger()

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.reportError(wErr)
		}
	}
}
