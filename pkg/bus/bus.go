// Package bus mirrors broadcast-hub events onto NATS JetStream so other
// services can consume inventory changes durably. The in-process hub stays
// the source of truth for connected observers; the bus is optional and
// best-effort from the engine's point of view.
package bus

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is prepended to event types to form subjects,
// e.g. stockd.events.items_changed.
const DefaultSubjectPrefix = "stockd.events"

// Bus wraps a NATS JetStream connection for publishing inventory events.
type Bus struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	prefix string
}

// New connects to the provided NATS endpoint. An empty prefix selects
// DefaultSubjectPrefix.
func New(url, prefix string, opts ...nats.Option) (*Bus, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js, prefix: prefix}, nil
}

// Close drains and shuts down the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// PublishEvent encodes the payload as JSON and publishes it to
// <prefix>.<eventType>.
func (b *Bus) PublishEvent(ctx context.Context, eventType string, data any) error {
	if b == nil {
		return errors.New("nil bus")
	}
	if eventType == "" {
		return errors.New("event type is required")
	}
	if data == nil {
		data = map[string]any{}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(b.prefix+"."+eventType, payload, nats.Context(ctx))
	return err
}
