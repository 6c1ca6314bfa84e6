package domain

import "time"

// ChangeKind is the record family a change touches
type ChangeKind string

const (
	ChangeItem     ChangeKind = "item"
	ChangeMovement ChangeKind = "movement"
)

// ChangeOp is the write that was committed
type ChangeOp string

const (
	OpUpsert ChangeOp = "upsert"
	OpDelete ChangeOp = "delete"
)

// Change describes one committed write, as emitted by a ChangeWatcher
type Change struct {
	Kind       ChangeKind `json:"kind"`
	Op         ChangeOp   `json:"op"`
	ItemID     string     `json:"item_id"`
	MovementID string     `json:"movement_id,omitempty"`
	Version    int64      `json:"version,omitempty"`
	At         time.Time  `json:"at"`
}
