// Package views keeps fetched store contents in sync with the store. A view
// holds the last fetched data together with a loading flag and an error,
// and re-fetches in full whenever a change event is published.
package views

import (
	"context"
	"sync"

	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/loop"
)

// State is a snapshot of a view. Err is nil after a successful fetch.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Fetcher loads the full collection a view displays.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Subscriber is the read side of the change bus.
type Subscriber interface {
	Subscribe(h events.Handler) string
	Unsubscribe(id string) bool
}

// Query is a generic reactive view over a Fetcher.
type Query[T any] struct {
	name   string
	fetch  Fetcher[T]
	bus    Subscriber
	sched  loop.Scheduler
	logger *log.Logger

	mu       sync.Mutex
	state    State[T]
	subID    string
	watchers map[int]func(State[T])
	nextID   int
}

func NewQuery[T any](name string, fetch Fetcher[T], bus Subscriber, sched loop.Scheduler, logger *log.Logger) *Query[T] {
	if logger == nil {
		logger = log.Nop()
	}
	return &Query[T]{
		name:     name,
		fetch:    fetch,
		bus:      bus,
		sched:    sched,
		logger:   logger.WithComponent(log.ComponentViews).With("view", name),
		watchers: make(map[int]func(State[T])),
	}
}

// Activate registers the view on the bus and schedules the first fetch.
// Calling it on an active view does nothing.
func (q *Query[T]) Activate(ctx context.Context) {
	q.mu.Lock()
	if q.subID != "" {
		q.mu.Unlock()
		return
	}
	q.subID = q.bus.Subscribe(func(e events.Event) {
		q.logger.Debug("Change event received", "event", string(e.Type))
		q.sched.Schedule(func() { q.Refresh(ctx) })
	})
	q.mu.Unlock()

	q.sched.Schedule(func() { q.Refresh(ctx) })
}

// Close unregisters the view from the bus. The last state stays readable.
func (q *Query[T]) Close() {
	q.mu.Lock()
	id := q.subID
	q.subID = ""
	q.mu.Unlock()
	if id != "" {
		q.bus.Unsubscribe(id)
	}
}

// Refresh re-runs the fetch on the caller's goroutine and returns the
// resulting state. On failure the previous data is kept and Err is set.
func (q *Query[T]) Refresh(ctx context.Context) State[T] {
	q.update(func(s *State[T]) { s.Loading = true })

	data, err := q.fetch(ctx)
	if err != nil {
		q.logger.ErrorContext(ctx, "View fetch failed", log.FieldOperation, log.OpRefresh, log.FieldError, err)
	}

	return q.update(func(s *State[T]) {
		s.Loading = false
		s.Err = err
		if err == nil {
			s.Data = data
		}
	})
}

// State returns the current snapshot.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Watch registers fn for every state transition and returns a function
// that removes it.
func (q *Query[T]) Watch(fn func(State[T])) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextID
	q.nextID++
	q.watchers[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.watchers, id)
	}
}

func (q *Query[T]) setError(err error) {
	q.update(func(s *State[T]) { s.Err = err })
}

func (q *Query[T]) update(mutate func(*State[T])) State[T] {
	q.mu.Lock()
	mutate(&q.state)
	snapshot := q.state
	watchers := make([]func(State[T]), 0, len(q.watchers))
	for i := 0; i < q.nextID; i++ {
		if fn, ok := q.watchers[i]; ok {
			watchers = append(watchers, fn)
		}
	}
	q.mu.Unlock()

	for _, fn := range watchers {
		fn(snapshot)
	}
	return snapshot
}
