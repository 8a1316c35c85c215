package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// KeepaliveInterval is how often an idle event stream emits a comment frame
// so intermediaries do not drop the connection.
const KeepaliveInterval = 30 * time.Second

// handleEvents streams hub events to the client as server-sent events. The
// subscription's queue is bounded; a client that cannot keep up misses
// events rather than stalling publishers, and reconnecting clients are
// expected to re-fetch current state.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	client := a.hub.Subscribe()
	defer a.hub.Unsubscribe(client)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(KeepaliveInterval)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-client.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				a.log.Error().Err(err).Str("event", ev.Type).Msg("encode event")
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
