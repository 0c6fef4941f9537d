package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Config holds the configuration for a Store.
type Config struct {
	Translator Translator    // Placeholder text for defaults. Nil uses English.
	Logger     *slog.Logger  // Nil discards logs.
	SaveDelay  time.Duration // Debounce window. Zero means DefaultSaveDelay.
	Clock      func() time.Time
}

// Store owns one CV document and is the only writer of it.
//
// Every mutation refreshes lastModified, publishes an Event and arms the
// persistence scheduler. Misses (unknown path, id or index) are silent: no
// write, no event, false return.
type Store struct {
	mu      sync.Mutex
	doc     Document
	backend Backend
	bus     *Bus
	saver   *Debouncer
	writeMu sync.Mutex
	tr      Translator
	logger  *slog.Logger
	now     func() time.Time

	saves     int
	lastSave  *time.Time
	lastError error
}

// Open creates a store and loads the document from backend.
// Missing or malformed data falls back to the default document; a failing
// backend read is logged and also falls back.
func Open(ctx context.Context, backend Backend, cfg Config) (*Store, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	delay := cfg.SaveDelay
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	s := &Store{
		backend: backend,
		bus:     NewBus(logger),
		tr:      cfg.Translator,
		logger:  logger,
		now:     now,
	}
	s.saver = NewDebouncer(delay, func() {
		_ = s.write(context.Background())
	})
	s.doc = s.load(ctx)

	return s, nil
}

func (s *Store) load(ctx context.Context) Document {
	data, ok, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load document, using defaults", "error", err)
		return NewDefault(s.tr)
	}
	if !ok {
		s.logger.Debug("no stored document, using defaults")
		return NewDefault(s.tr)
	}

	loaded, err := Decode(data)
	if err != nil {
		s.logger.Warn("stored document is malformed, using defaults", "error", err)
		return NewDefault(s.tr)
	}
	return Reconcile(loaded, s.tr)
}

// Document returns the current document. The reference is live; callers
// must not mutate it.
func (s *Store) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Translator returns the translator used for defaults.
func (s *Store) Translator() Translator {
	return s.tr
}

// Subscribe registers a listener for every change. See Bus.Subscribe.
func (s *Store) Subscribe(fn Listener) func() {
	return s.bus.Subscribe(fn)
}

// SubscribePattern registers a listener for changes under a path pattern.
// See Bus.SubscribePattern.
func (s *Store) SubscribePattern(pattern string, fn Listener) (func(), error) {
	return s.bus.SubscribePattern(pattern, fn)
}

// Get reads the value at path. It reports false when any step is missing.
func (s *Store) Get(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Lookup(s.doc, path)
}

// Set writes value at path, creating absent intermediate mappings.
//
// A path ending in "date" addresses the startDate/endDate pair of the parent
// record: a string or numeric value is split on "-" (whitespace around the separator is
// trimmed), both fields are written, and the document is saved immediately.
// A single event is published for the literal path.
//
// A path that ends at a collection record, or crosses a scalar or an unknown
// record id, is not writable and is dropped.
func (s *Store) Set(path string, value any) bool {
	if path == "" {
		return false
	}
	value = Normalize(value)
	keys := SplitPath(path)

	if keys[len(keys)-1] == DateAlias {
		if text, ok := dateText(value); ok {
			return s.setDateRange(path, text)
		}
	}

	s.mu.Lock()
	container, key := Resolve(s.doc, path)
	parent, ok := container.(Node)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("path not writable, write dropped", "path", path)
		return false
	}
	parent[key] = value
	s.touchLocked()
	doc := s.doc
	s.mu.Unlock()

	s.publish(FieldChanged, path, value, doc)
	s.saver.Trigger()
	return true
}

func (s *Store) setDateRange(path, text string) bool {
	start, end := SplitDateRange(text)
	parentPath := strings.TrimSuffix(path, DateAlias)

	s.mu.Lock()
	container, _ := Resolve(s.doc, parentPath+"startDate")
	record, ok := container.(Node)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("date path not writable, write dropped", "path", path)
		return false
	}
	record["startDate"] = start
	record["endDate"] = end
	s.touchLocked()
	doc := s.doc
	s.mu.Unlock()

	s.publish(FieldChanged, path, text, doc)
	_ = s.SaveNow(context.Background())
	return true
}

// dateText reads a date alias value. Bare years arrive as numbers from JSON
// callers and are taken as their text.
func dateText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int, int64, float64:
		return fmt.Sprint(v), true
	}
	return "", false
}

// SplitDateRange splits "start - end" into its parts. A missing end is "".
func SplitDateRange(text string) (start, end string) {
	parts := strings.Split(text, "-")
	start = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		end = strings.TrimSpace(parts[1])
	}
	return start, end
}

// AddItem appends record to the collection at path.
// The caller supplies a unique id; the store does not check it.
func (s *Store) AddItem(path string, record Node) bool {
	return s.mutateCollection(path, func(coll []any) ([]any, bool) {
		return append(coll[:len(coll):len(coll)], Normalize(record)), true
	})
}

// RemoveItem removes the first record with the given id.
func (s *Store) RemoveItem(path, id string) bool {
	return s.mutateCollection(path, func(coll []any) ([]any, bool) {
		_, i, found := findRecord(coll, id)
		if !found {
			return nil, false
		}
		return append(coll[:i:i], coll[i+1:]...), true
	})
}

// UpdateItem shallow-merges fields into the record with the given id.
// Fields not named in fields are kept.
func (s *Store) UpdateItem(path, id string, fields Node) bool {
	return s.mutateCollection(path, func(coll []any) ([]any, bool) {
		record, _, found := findRecord(coll, id)
		if !found {
			return nil, false
		}
		for k, v := range fields {
			record[k] = Normalize(v)
		}
		return coll, true
	})
}

// MoveItem relocates the record at from to index to. Both indexes must be in
// range; records in between shift by one.
func (s *Store) MoveItem(path string, from, to int) bool {
	return s.mutateCollection(path, func(coll []any) ([]any, bool) {
		n := len(coll)
		if from < 0 || to < 0 || from >= n || to >= n {
			return nil, false
		}
		item := coll[from]
		rest := append(coll[:from:from], coll[from+1:]...)
		moved := make([]any, 0, n)
		moved = append(moved, rest[:to]...)
		moved = append(moved, item)
		moved = append(moved, rest[to:]...)
		return moved, true
	})
}

// ReorderItems rebuilds the collection in the order of ids.
// Ids that match no record are skipped and records not listed are dropped.
func (s *Store) ReorderItems(path string, ids []string) bool {
	return s.mutateCollection(path, func(coll []any) ([]any, bool) {
		reordered := make([]any, 0, len(ids))
		for _, id := range ids {
			if record, _, found := findRecord(coll, id); found {
				reordered = append(reordered, record)
			}
		}
		return reordered, true
	})
}

func (s *Store) mutateCollection(path string, fn func([]any) ([]any, bool)) bool {
	s.mu.Lock()
	v, ok := Lookup(s.doc, path)
	coll, isColl := v.([]any)
	if !ok || !isColl {
		s.mu.Unlock()
		return false
	}
	// Lookup succeeded, so Resolve creates nothing here.
	container, key := Resolve(s.doc, path)
	parent, ok := container.(Node)
	if !ok {
		s.mu.Unlock()
		return false
	}

	updated, changed := fn(coll)
	if !changed {
		s.mu.Unlock()
		return false
	}
	parent[key] = updated
	s.touchLocked()
	doc := s.doc
	s.mu.Unlock()

	s.publish(CollectionChanged, path, updated, doc)
	s.saver.Trigger()
	return true
}

// Export serializes the document as indented JSON.
func (s *Store) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EncodeIndent(s.doc)
}

// ExportYAML serializes the document as YAML.
func (s *Store) ExportYAML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EncodeYAML(s.doc)
}

// Import replaces the document with text (JSON or YAML) reconciled against
// the defaults, saves immediately and publishes a BulkReplaced event.
// Unparseable text leaves the document and storage untouched.
func (s *Store) Import(ctx context.Context, text string) bool {
	loaded, err := Decode(text)
	if err != nil {
		s.logger.Warn("import rejected", "error", err)
		return false
	}
	s.replace(ctx, Reconcile(loaded, s.tr))
	return true
}

// Refresh replaces the document with data written by another process (an
// external file edit, another server). The document is reconciled and a
// BulkReplaced event is published, but nothing is written back.
func (s *Store) Refresh(data string) bool {
	loaded, err := Decode(data)
	if err != nil {
		s.logger.Warn("external change ignored", "error", err)
		return false
	}
	doc := Reconcile(loaded, s.tr)

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	s.publish(BulkReplaced, WildcardPath, doc, doc)
	return true
}

// Reset replaces the document with the defaults, saves immediately and
// publishes a BulkReplaced event.
func (s *Store) Reset(ctx context.Context) {
	s.replace(ctx, NewDefault(s.tr))
}

func (s *Store) replace(ctx context.Context, doc Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	_ = s.SaveNow(ctx)
	s.publish(BulkReplaced, WildcardPath, doc, doc)
}

// SaveNow cancels any pending scheduled save and writes synchronously.
// The error is also logged; the in-memory document is never rolled back.
func (s *Store) SaveNow(ctx context.Context) error {
	s.saver.Cancel()
	return s.write(ctx)
}

// SavePending reports whether a scheduled save is armed.
func (s *Store) SavePending() bool {
	return s.saver.Pending()
}

// Close writes any pending save and stops the scheduler.
func (s *Store) Close(ctx context.Context) error {
	var err error
	if s.saver.Cancel() {
		err = s.write(ctx)
	}
	s.saver.Stop(5 * time.Second)
	return err
}

// write holds writeMu across the snapshot and the backend call, so storage
// always ends at the latest snapshot taken.
func (s *Store) write(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	data, err := Encode(s.doc)
	s.mu.Unlock()
	if err != nil {
		s.recordSave(err)
		s.logger.Error("failed to serialize document", "error", err)
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := s.backend.Store(ctx, data); err != nil {
		s.recordSave(err)
		s.logger.Error("failed to save document", "error", err)
		return fmt.Errorf("failed to save document: %w", err)
	}
	s.recordSave(nil)
	s.logger.Debug("document saved", "bytes", len(data))
	return nil
}

func (s *Store) recordSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
	if err == nil {
		now := s.now()
		s.lastSave = &now
		s.saves++
	}
}

func (s *Store) touchLocked() {
	s.doc[KeyLastModified] = s.now().UTC().Format(TimestampLayout)
}

func (s *Store) publish(kind EventKind, path string, value any, doc Document) {
	s.bus.Publish(Event{
		Kind:      kind,
		Path:      path,
		Value:     value,
		Document:  doc,
		Timestamp: s.now().UnixMilli(),
	})
}
