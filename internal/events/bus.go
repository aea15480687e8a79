// Package events is the in-process change notification channel between the
// mutation entry point and the views that display store contents.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names the change that happened.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	BudgetsSeeded      Type = "budgets.seeded"
	PreferenceChanged  Type = "preference.changed"
)

// Event describes a completed store mutation.
type Event struct {
	Type      Type      `json:"type"`
	ID        int64     `json:"id,omitempty"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(t Type, id int64, category string) Event {
	return Event{Type: t, ID: id, Category: category, Timestamp: time.Now()}
}

// Handler is called synchronously on the publisher's goroutine and must not
// block; long work belongs on a scheduler.
type Handler func(Event)

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(e Event)
}

// Bus is an observer list. Handlers run in registration order.
// It is safe for concurrent use.
type Bus struct {
	mu    sync.RWMutex
	subs  map[string]Handler
	order []string
}

var _ Publisher = (*Bus)(nil)

func NewBus() *Bus {
	return &Bus{subs: make(map[string]Handler)}
}

// Subscribe registers h and returns the id to pass to Unsubscribe.
func (b *Bus) Subscribe(h Handler) string {
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[id] = h
	b.order = append(b.order, id)
	return id
}

// Unsubscribe removes the handler. It reports whether id was registered.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return false
	}
	delete(b.subs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// Publish delivers e to every handler registered at the time of the call.
// Handlers may subscribe or unsubscribe while being called.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// NoOpPublisher drops every event (for tests or when nothing listens).
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(Event) {}
