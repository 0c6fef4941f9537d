// Package view holds the view-side protocol for consuming store events.
//
// A renderer that re-draws on every change must not re-draw while the user is
// typing into a field it would replace. The store does not know about editing:
// the view opens a Session before a multi-step edit and the Coalescer holds
// events until every open session is released.
package view

import (
	"sync"

	"github.com/aretw0/cvpro/pkg/core"
)

// Mode selects what happens to events held during an edit session.
type Mode int

const (
	// Replay delivers one event when the last session is released: a
	// BulkReplaced event if one was held, otherwise the most recent event.
	Replay Mode = iota
	// Discard drops held events. The edited field is already on screen.
	Discard
)

// Coalescer forwards store events to a listener, holding them while an edit
// session is open.
type Coalescer struct {
	mu      sync.Mutex
	next    core.Listener
	mode    Mode
	open    int
	held    *core.Event
	skipped int
}

// NewCoalescer wraps next.
func NewCoalescer(next core.Listener, mode Mode) *Coalescer {
	return &Coalescer{next: next, mode: mode}
}

// Handle is a core.Listener. Subscribe it to the store.
func (c *Coalescer) Handle(e core.Event) {
	c.mu.Lock()
	if c.open > 0 {
		c.hold(e)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.next(e)
}

func (c *Coalescer) hold(e core.Event) {
	c.skipped++
	if c.held != nil && c.held.Kind == core.BulkReplaced && e.Kind != core.BulkReplaced {
		return
	}
	c.held = &e
}

// Editing reports whether any session is open.
func (c *Coalescer) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open > 0
}

// Skipped reports how many events were held since the coalescer was created.
func (c *Coalescer) Skipped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipped
}

// Begin opens an edit session. Sessions nest; events flow again once all
// are released.
func (c *Coalescer) Begin() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open++
	return &Session{c: c}
}

func (c *Coalescer) release() {
	c.mu.Lock()
	c.open--
	if c.open > 0 {
		c.mu.Unlock()
		return
	}
	held := c.held
	c.held = nil
	c.mu.Unlock()

	if held != nil && c.mode == Replay {
		c.next(*held)
	}
}

// Session is a caller-held edit token.
type Session struct {
	c    *Coalescer
	once sync.Once
}

// Release closes the session. Calling it again is a no-op.
func (s *Session) Release() {
	s.once.Do(s.c.release)
}
