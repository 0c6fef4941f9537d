// Package lifecycle exposes store change events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/cvpro/pkg/core"
)

// DefaultBuffer is the number of events held for a slow consumer.
const DefaultBuffer = 64

// Subscriber is implemented by *core.Store.
type Subscriber interface {
	Subscribe(fn core.Listener) func()
}

// Source bridges store events to the generic lifecycle Event interface.
type Source struct {
	sub     Subscriber
	events  chan core.Event
	out     chan lifecycle.Event
	dropped atomic.Int64
}

var _ lifecycle.Source = (*Source)(nil)

// NewSource creates a source fed by sub. Listeners run on the mutating
// goroutine, so events beyond buffer are dropped rather than blocking the store.
func NewSource(sub Subscriber, buffer int) *Source {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Source{
		sub:    sub,
		events: make(chan core.Event, buffer),
		out:    make(chan lifecycle.Event),
	}
}

// Events implements lifecycle.Source. The channel closes when the context
// given to Start is done.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Dropped reports how many events were discarded because the buffer was full.
func (s *Source) Dropped() int64 {
	return s.dropped.Load()
}

// Start subscribes to the store and forwards events until ctx is done.
func (s *Source) Start(ctx context.Context) error {
	unsubscribe := s.sub.Subscribe(func(e core.Event) {
		select {
		case s.events <- e:
		default:
			s.dropped.Add(1)
		}
	})

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-s.events:
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
