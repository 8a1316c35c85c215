package hub

import (
	"sync"
	"testing"
	"time"
)

func TestSubscribeReceivesConnected(t *testing.T) {
	h := New()
	c := h.Subscribe()
	defer h.Unsubscribe(c)

	select {
	case ev := <-c.Events():
		if ev.Type != EventConnected {
			t.Fatalf("first event = %q, want %q", ev.Type, EventConnected)
		}
	case <-time.After(time.Second):
		t.Fatal("no connected event received")
	}
}

func TestPublishWithNoClients(t *testing.T) {
	h := New()
	// Must not panic or block.
	h.Publish(EventItemsChanged, map[string]any{"action": "created"})
}

func TestPublishPreservesOrderPerClient(t *testing.T) {
	h := New()
	c := h.Subscribe()
	defer h.Unsubscribe(c)

	<-c.Events() // connected

	h.Publish(EventItemsChanged, map[string]any{"n": 1})
	h.Publish(EventNotificationsChanged, map[string]any{"n": 2})
	h.Publish(EventCategoriesChanged, map[string]any{"n": 3})

	want := []string{EventItemsChanged, EventNotificationsChanged, EventCategoriesChanged}
	for _, wantType := range want {
		select {
		case ev := <-c.Events():
			if ev.Type != wantType {
				t.Fatalf("event type = %q, want %q", ev.Type, wantType)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing %q event", wantType)
		}
	}
}

func TestFullQueueDropsWithoutBlocking(t *testing.T) {
	h := New()
	c := h.Subscribe() // connected occupies one slot

	done := make(chan struct{})
	go func() {
		for i := 0; i < QueueCapacity*3; i++ {
			h.Publish(EventItemsChanged, map[string]any{"n": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full client queue")
	}

	// The client can hold at most its queue capacity.
	received := 0
	for {
		select {
		case <-c.Events():
			received++
		default:
			if received > QueueCapacity {
				t.Fatalf("received %d events, queue capacity is %d", received, QueueCapacity)
			}
			h.Unsubscribe(c)
			return
		}
	}
}

func TestUnsubscribeRemovesClient(t *testing.T) {
	h := New()
	c := h.Subscribe()
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}

	h.Unsubscribe(c)
	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}

	// Closed queue: receive must not block.
	if _, ok := <-c.Events(); ok {
		// connected event may still be buffered; drain until closed
		for range c.Events() {
		}
	}

	// Double unsubscribe is safe.
	h.Unsubscribe(c)
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	h := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := h.Subscribe()
			for j := 0; j < 50; j++ {
				h.Publish(EventItemsChanged, map[string]any{"n": j})
			}
			h.Unsubscribe(c)
		}()
	}
	wg.Wait()

	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after all clients unsubscribed", h.Len())
	}
}
