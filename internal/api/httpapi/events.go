package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	zlog "github.com/rs/zerolog/log"
)

// handleEvents streams player notifications as server-sent events.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id, ch := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(id)
	zlog.Debug().Msgf("events: subscriber connected: id=%s", id)

	for {
		select {
		case <-r.Context().Done():
			zlog.Debug().Msgf("events: subscriber disconnected: id=%s", id)
			return
		case n, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				zlog.Error().Msgf("events: failed to marshal notification: %v", err)
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", n.SequenceNo, n.Type, data)
			flusher.Flush()
		}
	}
}
