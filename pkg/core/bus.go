package core

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Bus is a synchronous observer list.
// Listeners run in subscription order on the publishing goroutine. A panicking
// listener is logged and does not stop the ones after it.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	nextID uint64
	logger *slog.Logger
}

type subscription struct {
	id      uint64
	fn      Listener
	pattern string
}

// NewBus creates an empty bus. A nil logger discards panic reports.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{logger: logger}
}

// Subscribe registers fn for every event. The returned function removes
// exactly this subscription and is safe to call more than once.
func (b *Bus) Subscribe(fn Listener) func() {
	return b.add(fn, "")
}

// SubscribePattern registers fn for events whose path matches a glob pattern.
// Segments are separated by dots: "jobs.*.title" matches any job title and
// "skills.**" matches the collection and everything below it.
// BulkReplaced events always match.
func (b *Bus) SubscribePattern(pattern string, fn Listener) (func(), error) {
	glob := toGlob(pattern)
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid path pattern %q", pattern)
	}
	return b.add(fn, glob), nil
}

// Len reports the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers e to every matching subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if !sub.matches(e) {
			continue
		}
		b.dispatch(sub, e)
	}
}

func (b *Bus) add(fn Listener, pattern string) func() {
	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, fn: fn, pattern: pattern}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) dispatch(sub *subscription, e Event) {
	defer func() {
		if recovered := recover(); recovered != nil {
			b.logger.Error("listener panic",
				"subscription", sub.id,
				"path", e.Path,
				"error", fmt.Errorf("%v", recovered),
			)
		}
	}()
	sub.fn(e)
}

func (s *subscription) matches(e Event) bool {
	if s.pattern == "" || e.Kind == BulkReplaced {
		return true
	}
	ok, err := doublestar.Match(s.pattern, toGlob(e.Path))
	return err == nil && ok
}

func toGlob(path string) string {
	return strings.ReplaceAll(path, PathSeparator, "/")
}
