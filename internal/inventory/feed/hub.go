package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
	"github.com/tair/stock-ledger/pkg/logger"
)

var tracer = otel.Tracer("change-feed")

var (
	subscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_subscribers",
			Help: "Open change feed subscriptions",
		},
		[]string{"feed"},
	)

	changesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_changes_total",
			Help: "Committed changes received from the store",
		},
		[]string{"kind", "op"},
	)
)

func init() {
	prometheus.MustRegister(subscribers, changesTotal)
}

// ErrStreamClosed is returned by Run when the store stops emitting changes
var ErrStreamClosed = errors.New("change stream closed")

// Relay receives every raw change, in commit order
type Relay interface {
	RelayChange(ctx context.Context, c domain.Change) error
}

// Hub turns the store's change stream into snapshot subscriptions.
// Changes are handled one at a time, so subscribers observe commits in order.
type Hub struct {
	watcher   domain.ChangeWatcher
	items     domain.InventoryRepository
	movements *query.ListMovementsHandler
	relays    []Relay

	mu           sync.Mutex
	movementSubs map[*Subscription[[]domain.MovementRecord]]int
	itemSubs     map[*Subscription[[]domain.InventoryItem]]struct{}
	stopped      bool
}

func NewHub(watcher domain.ChangeWatcher, items domain.InventoryRepository, movements *query.ListMovementsHandler, relays ...Relay) *Hub {
	return &Hub{
		watcher:      watcher,
		items:        items,
		movements:    movements,
		relays:       relays,
		movementSubs: map[*Subscription[[]domain.MovementRecord]]int{},
		itemSubs:     map[*Subscription[[]domain.InventoryItem]]struct{}{},
	}
}

// SubscribeMovements delivers the newest page of the ledger now and after
// every movement change
func (h *Hub) SubscribeMovements(ctx context.Context, pageSize int) (*Subscription[[]domain.MovementRecord], error) {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	if pageSize > query.MaxPageSize {
		pageSize = query.MaxPageSize
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return nil, ErrStreamClosed
	}

	page, err := h.movementPage(ctx, pageSize)
	if err != nil {
		return nil, err
	}

	sub := newSubscription[[]domain.MovementRecord]()
	sub.onCancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.movementSubs[sub]; ok {
			delete(h.movementSubs, sub)
			subscribers.WithLabelValues("movements").Dec()
		}
	}
	sub.send(page)
	h.movementSubs[sub] = pageSize
	subscribers.WithLabelValues("movements").Inc()
	return sub, nil
}

// SubscribeInventory delivers the full item list now and after every item change
func (h *Hub) SubscribeInventory(ctx context.Context) (*Subscription[[]domain.InventoryItem], error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return nil, ErrStreamClosed
	}

	items, err := h.items.FindAll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	sub := newSubscription[[]domain.InventoryItem]()
	sub.onCancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.itemSubs[sub]; ok {
			delete(h.itemSubs, sub)
			subscribers.WithLabelValues("inventory").Dec()
		}
	}
	sub.send(items)
	h.itemSubs[sub] = struct{}{}
	subscribers.WithLabelValues("inventory").Inc()
	return sub, nil
}

// Run consumes the change stream until ctx is cancelled. Every open
// subscription is closed when it returns.
func (h *Hub) Run(ctx context.Context) error {
	changes, err := h.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}
	return h.consume(ctx, changes)
}

// Start begins watching and consumes changes in the background. Changes
// committed after Start returns reach the subscribers.
func (h *Hub) Start(ctx context.Context) error {
	changes, err := h.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}
	go func() {
		if err := h.consume(ctx, changes); err != nil {
			logger.Logger.Error().Err(err).Msg("Change feed stopped")
		}
	}()
	return nil
}

func (h *Hub) consume(ctx context.Context, changes <-chan domain.Change) error {
	defer h.stop()

	logger.Logger.Info().Msg("Change feed started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrStreamClosed
			}
			h.handle(ctx, c)
		}
	}
}

func (h *Hub) handle(ctx context.Context, c domain.Change) {
	ctx, span := tracer.Start(ctx, "feed.handle")
	defer span.End()

	changesTotal.WithLabelValues(string(c.Kind), string(c.Op)).Inc()

	for _, r := range h.relays {
		if err := r.RelayChange(ctx, c); err != nil {
			logger.Warn(ctx).
				Err(err).
				Str("item_id", c.ItemID).
				Str("kind", string(c.Kind)).
				Msg("Failed to relay change")
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch c.Kind {
	case domain.ChangeMovement:
		h.broadcastMovements(ctx)
	case domain.ChangeItem:
		h.broadcastItems(ctx)
	}
}

// broadcastMovements loads one page per distinct page size. h.mu must be held.
func (h *Hub) broadcastMovements(ctx context.Context) {
	if len(h.movementSubs) == 0 {
		return
	}
	pages := map[int][]domain.MovementRecord{}
	for sub, size := range h.movementSubs {
		page, ok := pages[size]
		if !ok {
			var err error
			page, err = h.movementPage(ctx, size)
			if err != nil {
				logger.Error(ctx).Err(err).Int("page_size", size).Msg("Failed to refresh movement feed")
				continue
			}
			pages[size] = page
		}
		sub.send(page)
	}
}

// broadcastItems sends the item list to every inventory subscriber. h.mu must be held.
func (h *Hub) broadcastItems(ctx context.Context) {
	if len(h.itemSubs) == 0 {
		return
	}
	items, err := h.items.FindAll(ctx, "")
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to refresh inventory feed")
		return
	}
	for sub := range h.itemSubs {
		sub.send(items)
	}
}

func (h *Hub) movementPage(ctx context.Context, pageSize int) ([]domain.MovementRecord, error) {
	page, err := h.movements.Handle(ctx, query.ListMovementsQuery{PageSize: pageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to load movements: %w", err)
	}
	return page.Records, nil
}

func (h *Hub) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for sub := range h.movementSubs {
		sub.close()
		subscribers.WithLabelValues("movements").Dec()
	}
	for sub := range h.itemSubs {
		sub.close()
		subscribers.WithLabelValues("inventory").Dec()
	}
	clear(h.movementSubs)
	clear(h.itemSubs)
	logger.Logger.Info().Msg("Change feed stopped")
}
