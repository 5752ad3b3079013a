package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/micro-nova/hapticd/internal/models"
)

// keepAliveInterval is how often an idle stream gets a comment line, so
// proxies do not drop it between plays.
const keepAliveInterval = 15 * time.Second

// sseEvents handles the SSE (Server-Sent Events) endpoint.
// Clients receive the current actuator state immediately, then every
// snapshot published after a play, stop or amplitude change.
func (h *Handlers) sseEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	id := uuid.New().String()
	ch := h.events.Subscribe(id)
	defer h.events.Unsubscribe(id, ch)
	slog.Debug("api: sse subscriber connected", "id", id)

	if err := sendState(w, flusher, h.ctrl.State()); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case state, ok := <-ch:
			if !ok {
				return
			}
			if err := sendState(w, flusher, state); err != nil {
				slog.Debug("api: sse write failed", "id", id, "err", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func sendState(w http.ResponseWriter, flusher http.Flusher, state models.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
