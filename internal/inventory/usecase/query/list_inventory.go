package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// ListInventoryQuery lists items, optionally at one location
type ListInventoryQuery struct {
	Location string
}

// ListInventoryHandler handles list inventory query
type ListInventoryHandler struct {
	repo domain.InventoryRepository
}

// NewListInventoryHandler creates a new list inventory handler
func NewListInventoryHandler(repo domain.InventoryRepository) *ListInventoryHandler {
	return &ListInventoryHandler{repo: repo}
}

// Handle executes the list inventory query
func (h *ListInventoryHandler) Handle(ctx context.Context, query ListInventoryQuery) ([]domain.InventoryItem, error) {
	loc := domain.Location(query.Location)
	if loc != "" && !loc.Valid() {
		return nil, domain.NewValidationError("list items", "location must be FRONT or BACK")
	}

	items, err := h.repo.FindAll(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}

	return items, nil
}
