// Package hub fans out change events to connected observers. Each observer
// owns a bounded FIFO queue; publishing is non-blocking, so one slow client
// can only lose its own events and never stalls a request handler.
package hub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event types published by the inventory engine.
const (
	EventConnected            = "connected"
	EventItemsChanged         = "items_changed"
	EventNotificationsChanged = "notifications_changed"
	EventCategoriesChanged    = "categories_changed"
	EventCustomFieldsChanged  = "custom_fields_changed"
	EventRentalsChanged       = "rentals_changed"
)

// QueueCapacity bounds each client's pending events. A client that falls
// further behind misses events rather than buffering them.
const QueueCapacity = 10

// Event is one structured frame delivered to observers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client is the in-memory handle for one connected observer. It exists only
// for the lifetime of the connection and is never persisted.
type Client struct {
	id uuid.UUID
	ch chan Event
}

// Events returns the client's receive channel. The channel is closed when
// the client is unsubscribed.
func (c *Client) Events() <-chan Event { return c.ch }

// Hub keeps the registry of connected clients. The registry is only touched
// under mu, and mu is never held across blocking I/O.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*Client
}

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockd_events_published_total",
		Help: "Events published to the broadcast hub, by type.",
	}, []string{"type"})
	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockd_events_dropped_total",
		Help: "Events dropped because a client queue was full.",
	})
	clientsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockd_event_clients",
		Help: "Currently subscribed event stream clients.",
	})
)

// New returns an empty Hub.
func New() *Hub {
	return &Hub{clients: make(map[uuid.UUID]*Client)}
}

// Subscribe registers a new client and immediately enqueues the connection
// acknowledgement event.
func (h *Hub) Subscribe() *Client {
	c := &Client{id: uuid.New(), ch: make(chan Event, QueueCapacity)}

	h.mu.Lock()
	h.clients[c.id] = c
	// The queue is fresh, so this send cannot block; doing it under the lock
	// guarantees the acknowledgement precedes any published event.
	c.ch <- Event{Type: EventConnected, Data: map[string]any{}}
	h.mu.Unlock()

	clientsGauge.Inc()
	return c
}

// Unsubscribe removes the client and closes its queue. Safe to call more
// than once.
func (h *Hub) Unsubscribe(c *Client) {
	if c == nil {
		return
	}

	h.mu.Lock()
	_, present := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if present {
		close(c.ch)
		clientsGauge.Dec()
	}
}

// Publish enqueues the event to every subscribed client without blocking.
// Clients whose queue is full miss this event. Publishing with zero
// subscribers is a no-op.
func (h *Hub) Publish(eventType string, data any) {
	if data == nil {
		data = map[string]any{}
	}
	ev := Event{Type: eventType, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		select {
		case c.ch <- ev:
		default:
			droppedTotal.Inc()
		}
	}
	publishedTotal.WithLabelValues(eventType).Inc()
}

// Len reports the current number of subscribed clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
