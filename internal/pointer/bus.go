// Package pointer fans pointer-down events out to the components that are
// interested in interactions anywhere on the page.
package pointer

import (
	"strings"
	"sync"
)

// Event is a pointer-down on the element at Target, a slash separated path
// such as "select/Sex/option/1". An empty Target is the page background.
type Event struct {
	Target string
}

// Handler receives dispatched events.
type Handler func(Event)

type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns the function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Dispatch delivers e to every subscriber. Handlers run outside the bus lock
// so they may subscribe or unsubscribe.
func (b *Bus) Dispatch(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Within reports whether target is root or one of its descendants.
func Within(target, root string) bool {
	if root == "" {
		return false
	}
	return target == root || strings.HasPrefix(target, root+"/")
}
