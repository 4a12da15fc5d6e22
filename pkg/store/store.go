// Package store is the process-wide action queue behind widget removal.
//
// Cells dispatch actions without waiting; the UI pulls them one at a time
// with Next and applies them with Reduce inside its own update loop, so the
// dashboard state keeps a single writer.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/vanderheijden86/widgetboard/pkg/dashboard"
	"github.com/vanderheijden86/widgetboard/pkg/debug"
	"github.com/vanderheijden86/widgetboard/pkg/widget"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("store closed")

// Store queues dispatched actions in FIFO order.
type Store struct {
	mu      sync.Mutex
	queue   []widget.Action
	history []widget.Action
	notify  chan struct{}
	closed  bool
}

// New creates an empty store.
func New() *Store {
	return &Store{notify: make(chan struct{}, 1)}
}

// Dispatch enqueues an action. It never blocks; actions dispatched after
// Close are dropped.
func (s *Store) Dispatch(a widget.Action) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		debug.Log("store: dropped %s after close", a.Type)
		return
	}
	s.queue = append(s.queue, a)
	s.history = append(s.history, a)
	// notify is only closed under mu, so this send cannot race Close.
	select {
	case s.notify <- struct{}{}:
	default:
	}
	s.mu.Unlock()

	debug.Log("store: dispatched %s %s/%s", a.Type, a.Payload.CategoryID, a.Payload.WidgetID)
}

// Next blocks until an action is queued, the store is closed or ctx is done.
// Queued actions are still delivered after Close; ErrClosed is returned once
// the queue is drained.
func (s *Store) Next(ctx context.Context) (widget.Action, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			a := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return a, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return widget.Action{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return widget.Action{}, ctx.Err()
		case <-s.notify:
		}
	}
}

// Pending returns the number of queued actions.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// History returns every action dispatched so far, in order.
func (s *Store) History() []widget.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Close stops accepting actions and wakes any waiting Next.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.notify)
	s.mu.Unlock()
}

// Reduce applies an action to the dashboard state. Unknown action types leave
// the state unchanged.
func Reduce(state dashboard.State, a widget.Action) dashboard.State {
	switch a.Type {
	case widget.ActionRemoveWidget:
		return state.RemoveCard(a.Payload.CategoryID, a.Payload.WidgetID)
	default:
		return state
	}
}
