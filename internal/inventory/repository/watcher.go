package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// PQChangeWatcher streams committed changes from PostgreSQL LISTEN/NOTIFY
type PQChangeWatcher struct {
	dsn          string
	minReconnect time.Duration
	maxReconnect time.Duration
	pingInterval time.Duration
}

func NewPQChangeWatcher(dsn string) *PQChangeWatcher {
	return &PQChangeWatcher{
		dsn:          dsn,
		minReconnect: 500 * time.Millisecond,
		maxReconnect: 30 * time.Second,
		pingInterval: 90 * time.Second,
	}
}

// Watch listens on ChangeChannel until ctx is done. Notifications arrive in
// commit order. A reconnect may drop notifications; subscribers then re-fetch.
func (w *PQChangeWatcher) Watch(ctx context.Context) (<-chan domain.Change, error) {
	listener := pq.NewListener(w.dsn, w.minReconnect, w.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			logger.Logger.Warn().Err(err).Msg("Change listener disconnected")
		case pq.ListenerEventReconnected:
			logger.Logger.Info().Msg("Change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Logger.Error().Err(err).Msg("Change listener connection attempt failed")
		}
	})

	if err := listener.Listen(ChangeChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", ChangeChannel, err)
	}

	out := make(chan domain.Change, 64)
	go func() {
		defer close(out)
		defer listener.Close()

		ping := time.NewTicker(w.pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				// nil after a reconnect
				if n == nil {
					continue
				}
				var c domain.Change
				if err := json.Unmarshal([]byte(n.Extra), &c); err != nil {
					logger.Logger.Error().Err(err).Str("payload", n.Extra).Msg("Malformed change notification")
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case <-ping.C:
				if err := listener.Ping(); err != nil {
					logger.Logger.Warn().Err(err).Msg("Change listener ping failed")
				}
			}
		}
	}()

	return out, nil
}
