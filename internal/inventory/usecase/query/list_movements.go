package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListMovementsQuery requests one page of the ledger
type ListMovementsQuery struct {
	PageSize int
	// Cursor is the NextCursor of the previous page; empty starts from the newest record
	Cursor string
	ItemID string
}

// MovementPage is one page of the ledger, newest first
type MovementPage struct {
	Records    []domain.MovementRecord `json:"records"`
	NextCursor string                  `json:"next_cursor,omitempty"`
	HasMore    bool                    `json:"has_more"`
}

// ListMovementsHandler pages through the ledger by keyset
type ListMovementsHandler struct {
	repo  domain.MovementRepository
	codec *domain.CursorCodec
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(repo domain.MovementRepository, codec *domain.CursorCodec) *ListMovementsHandler {
	return &ListMovementsHandler{repo: repo, codec: codec}
}

// Handle executes the list movements query
func (h *ListMovementsHandler) Handle(ctx context.Context, query ListMovementsQuery) (*MovementPage, error) {
	if query.PageSize <= 0 {
		query.PageSize = DefaultPageSize
	}
	if query.PageSize > MaxPageSize {
		query.PageSize = MaxPageSize
	}

	filter := domain.MovementFilter{ItemID: query.ItemID, Limit: query.PageSize + 1}
	if query.Cursor != "" {
		c, err := h.codec.Decode(query.Cursor)
		if err != nil {
			return nil, err
		}
		filter.After = &c
	}

	records, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	page := &MovementPage{Records: records}
	if len(records) > query.PageSize {
		page.Records = records[:query.PageSize]
		page.HasMore = true
	}
	if n := len(page.Records); n > 0 {
		page.NextCursor = h.codec.Encode(domain.CursorOf(&page.Records[n-1]))
	}
	if page.Records == nil {
		page.Records = []domain.MovementRecord{}
	}
	return page, nil
}
