package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// MemStore is an in-process store with the same transactional contract as
// the PostgreSQL one: writes are buffered per transaction and committed
// atomically, and item versions are checked at commit time.
type MemStore struct {
	mu            sync.RWMutex
	items         map[string]domain.InventoryItem
	movements     map[string]domain.MovementRecord
	notifications []domain.LowStockNotification
	clock         domain.Clock

	watchMu  sync.Mutex
	watchers map[int]*changeQueue
	nextID   int
}

func NewMemStore(clock domain.Clock) *MemStore {
	return &MemStore{
		items:     map[string]domain.InventoryItem{},
		movements: map[string]domain.MovementRecord{},
		clock:     clock,
		watchers:  map[int]*changeQueue{},
	}
}

// Create implements domain.InventoryRepository
func (s *MemStore) Create(ctx context.Context, item *domain.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return domain.NewValidationError("create item", "item "+item.ID+" already exists")
	}
	now := s.clock.Now()
	item.Version = 1
	item.CreatedAt = now
	item.LastUpdated = now
	s.items[item.ID] = *item

	s.publish(domain.Change{Kind: domain.ChangeItem, Op: domain.OpUpsert, ItemID: item.ID, Version: 1, At: now})
	return nil
}

func (s *MemStore) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("find item", "item", id)
	}
	return &item, nil
}

func (s *MemStore) FindAll(ctx context.Context, location domain.Location) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		if location == "" || item.Location == location {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemStore) FindLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.InventoryItem
	for _, item := range s.items {
		if item.IsLowStock() {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity == out[j].Quantity {
			return out[i].ID < out[j].ID
		}
		return out[i].Quantity < out[j].Quantity
	})
	return out, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.NewNotFoundError("delete item", "item", id)
	}
	delete(s.items, id)
	s.publish(domain.Change{Kind: domain.ChangeItem, Op: domain.OpDelete, ItemID: id, At: s.clock.Now()})
	return nil
}

// MovementByID returns one ledger record
func (s *MemStore) MovementByID(ctx context.Context, id string) (*domain.MovementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movements[id]
	if !ok {
		return nil, domain.NewNotFoundError("find movement", "movement", id)
	}
	return &m, nil
}

// ListMovements returns records in ledger order
func (s *MemStore) ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	s.mu.RLock()
	out := make([]domain.MovementRecord, 0, len(s.movements))
	for _, m := range s.movements {
		if filter.After != nil && !filter.After.After(&m) {
			continue
		}
		if filter.ItemID != "" && m.ItemID != filter.ItemID {
			continue
		}
		if !filter.Start.IsZero() && m.Timestamp.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && m.Timestamp.After(filter.End) {
			continue
		}
		out = append(out, m)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Movements returns a domain.MovementRepository view of the store
func (s *MemStore) Movements() domain.MovementRepository {
	return memMovements{s}
}

type memMovements struct{ s *MemStore }

func (m memMovements) FindByID(ctx context.Context, id string) (*domain.MovementRecord, error) {
	return m.s.MovementByID(ctx, id)
}

func (m memMovements) List(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	return m.s.ListMovements(ctx, filter)
}

// Notify implements domain.NotificationSink
func (s *MemStore) Notify(ctx context.Context, n domain.LowStockNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

// Notifications returns every stored low-stock batch in arrival order
func (s *MemStore) Notifications() []domain.LowStockNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LowStockNotification(nil), s.notifications...)
}

// WithinTx implements domain.Transactor
func (s *MemStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.StoreTx) error) error {
	tx := &memTx{
		store:     s,
		items:     map[string]domain.InventoryItem{},
		readItems: map[string]int64{},
		readMoves: map[string]domain.MovementRecord{},
		movements: map[string]*domain.MovementRecord{},
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *MemStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, readVersion := range tx.readItems {
		if _, written := tx.items[id]; !written {
			continue
		}
		current, ok := s.items[id]
		if !ok || current.Version != readVersion {
			return domain.NewConflictError("commit", id)
		}
	}
	// a movement read by the transaction must not have changed since
	for id, read := range tx.readMoves {
		current, ok := s.movements[id]
		if !ok || !sameMovement(current, read) {
			return domain.NewConflictError("commit", read.ItemID)
		}
	}
	present := map[string]bool{}
	for _, op := range tx.ops {
		exists, seen := present[op.id]
		if !seen {
			_, exists = s.movements[op.id]
		}
		if op.kind == movementInsert {
			if exists {
				return domain.NewValidationError("commit", "movement "+op.id+" already exists")
			}
			present[op.id] = true
			continue
		}
		if !exists {
			return domain.NewConflictError("commit", op.itemID)
		}
		present[op.id] = op.kind != movementDelete
	}

	now := s.clock.Now()
	var changes []domain.Change
	for _, id := range tx.itemOrder {
		item := tx.items[id]
		item.Version = tx.readItems[id] + 1
		s.items[id] = item
		changes = append(changes, domain.Change{Kind: domain.ChangeItem, Op: domain.OpUpsert, ItemID: id, Version: item.Version, At: now})
	}
	for _, op := range tx.ops {
		c := domain.Change{Kind: domain.ChangeMovement, ItemID: op.itemID, MovementID: op.id, At: now}
		switch op.kind {
		case movementInsert, movementUpdate:
			// nil when a later op in the same transaction deleted it
			if m := tx.movements[op.id]; m != nil {
				s.movements[op.id] = *m
			}
			c.Op = domain.OpUpsert
		case movementDelete:
			delete(s.movements, op.id)
			c.Op = domain.OpDelete
		}
		changes = append(changes, c)
	}

	for _, c := range changes {
		s.publish(c)
	}
	return nil
}

type movementOpKind int

const (
	movementInsert movementOpKind = iota
	movementUpdate
	movementDelete
)

type movementOp struct {
	kind   movementOpKind
	id     string
	itemID string
}

type memTx struct {
	store     *MemStore
	items     map[string]domain.InventoryItem
	itemOrder []string
	readItems map[string]int64
	readMoves map[string]domain.MovementRecord
	movements map[string]*domain.MovementRecord
	deleted   map[string]bool
	ops       []movementOp
}

func (t *memTx) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	if item, ok := t.items[id]; ok {
		return &item, nil
	}
	item, err := t.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, seen := t.readItems[id]; !seen {
		t.readItems[id] = item.Version
	}
	return item, nil
}

func (t *memTx) SaveItem(ctx context.Context, item *domain.InventoryItem) error {
	readVersion, ok := t.readItems[item.ID]
	if !ok {
		return domain.NewValidationError("save item", "item "+item.ID+" was not read in this transaction")
	}
	if _, written := t.items[item.ID]; !written {
		t.itemOrder = append(t.itemOrder, item.ID)
		if item.Version != readVersion {
			return domain.NewConflictError("save item", item.ID)
		}
	}
	item.Version++
	t.items[item.ID] = *item
	return nil
}

func (t *memTx) GetMovement(ctx context.Context, id string) (*domain.MovementRecord, error) {
	if t.deleted[id] {
		return nil, domain.NewNotFoundError("get movement", "movement", id)
	}
	if m, ok := t.movements[id]; ok {
		cp := *m
		return &cp, nil
	}
	if read, ok := t.readMoves[id]; ok {
		return &read, nil
	}
	m, err := t.store.MovementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.readMoves[id] = *m
	return m, nil
}

func sameMovement(a, b domain.MovementRecord) bool {
	return a.Fields() == b.Fields() &&
		a.ItemID == b.ItemID &&
		a.Status == b.Status &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

func (t *memTx) InsertMovement(ctx context.Context, m *domain.MovementRecord) error {
	cp := *m
	t.movements[m.ID] = &cp
	t.ops = append(t.ops, movementOp{kind: movementInsert, id: m.ID, itemID: m.ItemID})
	return nil
}

func (t *memTx) UpdateMovement(ctx context.Context, m *domain.MovementRecord) error {
	if _, err := t.GetMovement(ctx, m.ID); err != nil {
		return err
	}
	cp := *m
	t.movements[m.ID] = &cp
	t.ops = append(t.ops, movementOp{kind: movementUpdate, id: m.ID, itemID: m.ItemID})
	return nil
}

func (t *memTx) DeleteMovement(ctx context.Context, id string) error {
	m, err := t.GetMovement(ctx, id)
	if err != nil {
		return err
	}
	if t.deleted == nil {
		t.deleted = map[string]bool{}
	}
	t.deleted[id] = true
	delete(t.movements, id)
	t.ops = append(t.ops, movementOp{kind: movementDelete, id: id, itemID: m.ItemID})
	return nil
}
