// Package lifecycle distributes app foreground/background transitions to
// subscribers. Each subscriber owns its subscription and releases it
// explicitly; there is no process-wide listener.
package lifecycle

import (
	"log/slog"
	"sync"

	"enatega_storefront/internal/model"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 8

// Hub tracks the current lifecycle state and fans signals out to subscribers.
type Hub struct {
	mu      sync.Mutex
	current model.LifecycleState
	subs    map[int]chan model.AppLifecycleSignal
	nextID  int
	bufSize int
	logger  *slog.Logger
}

// NewHub creates a hub that starts in the active state.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		current: model.LifecycleActive,
		subs:    make(map[int]chan model.AppLifecycleSignal),
		bufSize: DefaultBufferSize,
		logger:  logger.With("component", "lifecycle"),
	}
}

// Current returns the last state reported to the hub.
func (h *Hub) Current() model.LifecycleState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Subscribe registers a subscriber. The returned release func closes the
// channel and must be called once the subscriber is done. Calling it more
// than once is safe.
func (h *Hub) Subscribe() (<-chan model.AppLifecycleSignal, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan model.AppLifecycleSignal, h.bufSize)
	h.subs[id] = ch

	var once sync.Once
	release := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return ch, release
}

// Transition records a move to next and notifies subscribers.
// Transitions to the current state are ignored. A subscriber whose buffer
// is full misses the signal rather than blocking the publisher.
func (h *Hub) Transition(next model.LifecycleState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if next == h.current {
		return
	}
	signal := model.AppLifecycleSignal{Previous: h.current, Next: next}
	h.current = next

	for id, ch := range h.subs {
		select {
		case ch <- signal:
		default:
			h.logger.Warn("dropping lifecycle signal for slow subscriber",
				"subscriber", id, "previous", signal.Previous, "next", signal.Next)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
