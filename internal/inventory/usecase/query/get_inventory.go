package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// GetInventoryQuery represents the query to get an item
type GetInventoryQuery struct {
	ID string
}

// GetInventoryHandler handles get inventory query
type GetInventoryHandler struct {
	repo domain.InventoryRepository
}

// NewGetInventoryHandler creates a new get inventory handler
func NewGetInventoryHandler(repo domain.InventoryRepository) *GetInventoryHandler {
	return &GetInventoryHandler{repo: repo}
}

// Handle executes the get inventory query
func (h *GetInventoryHandler) Handle(ctx context.Context, query GetInventoryQuery) (*domain.InventoryItem, error) {
	if query.ID == "" {
		return nil, domain.NewValidationError("get item", "id is required")
	}

	item, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}

	return item, nil
}
