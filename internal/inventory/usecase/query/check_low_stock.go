package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// CheckLowStockHandler returns the items at or under their threshold
type CheckLowStockHandler struct {
	repo domain.InventoryRepository
}

// NewCheckLowStockHandler creates a new check low stock handler
func NewCheckLowStockHandler(repo domain.InventoryRepository) *CheckLowStockHandler {
	return &CheckLowStockHandler{repo: repo}
}

// Handle takes a snapshot of low-stock items at call time
func (h *CheckLowStockHandler) Handle(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := h.repo.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check low stock: %w", err)
	}
	return items, nil
}
