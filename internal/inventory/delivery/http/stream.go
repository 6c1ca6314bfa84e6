package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tair/stock-ledger/internal/inventory/feed"
	"github.com/tair/stock-ledger/pkg/logger"
)

const heartbeatInterval = 15 * time.Second

// streamEvents writes every snapshot of sub as a server-sent event until the
// client disconnects or the feed stops
func streamEvents[T any](w http.ResponseWriter, r *http.Request, event string, sub *feed.Subscription[T]) {
	defer sub.Cancel()

	openStreams.Inc()
	defer openStreams.Dec()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Streaming not supported by response writer")
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case snapshot, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				logger.Error(r.Context()).Err(err).Str("event", event).Msg("Failed to encode snapshot")
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
