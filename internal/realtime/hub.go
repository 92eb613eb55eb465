package realtime

import (
	"slices"
	"sync"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/ports"
)

// Hub fans realtime events out to every subscribed handler. Handlers must be
// comparable, typically pointers.
type Hub struct {
	mu       sync.RWMutex
	handlers []ports.RealtimeHandler
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers h. Subscribing the same handler twice is a no-op.
func (h *Hub) Subscribe(handler ports.RealtimeHandler) {
	if handler == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if slices.Contains(h.handlers, handler) {
		return
	}
	h.handlers = append(h.handlers, handler)
}

// Unsubscribe removes h. Removing an unknown handler is a no-op.
func (h *Hub) Unsubscribe(handler ports.RealtimeHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i := slices.Index(h.handlers, handler); i >= 0 {
		h.handlers = slices.Delete(h.handlers, i, i+1)
	}
}

// Publish delivers ev to every handler in subscription order.
func (h *Hub) Publish(ev domain.Event) {
	h.mu.RLock()
	handlers := slices.Clone(h.handlers)
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler.HandleRealtimeEvent(ev)
	}
}

// Len returns the number of subscribed handlers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}
