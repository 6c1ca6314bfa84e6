package query

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// DefaultRecentLimit is how many movements the dashboard shows
const DefaultRecentLimit = 5

// RecentMovementsHandler returns the newest movements
type RecentMovementsHandler struct {
	repo domain.MovementRepository
}

func NewRecentMovementsHandler(repo domain.MovementRepository) *RecentMovementsHandler {
	return &RecentMovementsHandler{repo: repo}
}

func (h *RecentMovementsHandler) Handle(ctx context.Context, limit int) ([]domain.MovementRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	records, err := h.repo.List(ctx, domain.MovementFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent movements: %w", err)
	}
	return records, nil
}

// MaxRangeLimit bounds how many movements a single date-range query returns
const MaxRangeLimit = 1000

// MovementsByDateQuery selects at most Limit movements in an inclusive time
// range. A zero Limit means MaxRangeLimit.
type MovementsByDateQuery struct {
	Start time.Time
	End   time.Time
	Limit int
}

// MovementsByDateHandler returns movements in a time range, newest first
type MovementsByDateHandler struct {
	repo domain.MovementRepository
}

func NewMovementsByDateHandler(repo domain.MovementRepository) *MovementsByDateHandler {
	return &MovementsByDateHandler{repo: repo}
}

func (h *MovementsByDateHandler) Handle(ctx context.Context, q MovementsByDateQuery) ([]domain.MovementRecord, error) {
	if q.Start.IsZero() || q.End.IsZero() {
		return nil, domain.NewValidationError("movements by date", "start and end are required")
	}
	if q.End.Before(q.Start) {
		return nil, domain.NewValidationError("movements by date", "end must not be before start")
	}
	if q.Limit < 0 {
		return nil, domain.NewValidationError("movements by date", "limit must not be negative")
	}
	if q.Limit == 0 || q.Limit > MaxRangeLimit {
		q.Limit = MaxRangeLimit
	}
	records, err := h.repo.List(ctx, domain.MovementFilter{Start: q.Start, End: q.End, Limit: q.Limit})
	if err != nil {
		return nil, fmt.Errorf("failed to get movements by date: %w", err)
	}
	return records, nil
}
