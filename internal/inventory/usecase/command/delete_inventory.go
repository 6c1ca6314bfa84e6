package command

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// DeleteInventoryCommand represents the command to delete an inventory item
type DeleteInventoryCommand struct {
	ID string
}

// DeleteInventoryHandler handles delete inventory command
type DeleteInventoryHandler struct {
	repo domain.InventoryRepository
}

// NewDeleteInventoryHandler creates a new delete inventory handler
func NewDeleteInventoryHandler(repo domain.InventoryRepository) *DeleteInventoryHandler {
	return &DeleteInventoryHandler{repo: repo}
}

// Handle executes the delete inventory command
func (h *DeleteInventoryHandler) Handle(ctx context.Context, cmd DeleteInventoryCommand) error {
	if cmd.ID == "" {
		return domain.NewValidationError("delete item", "id is required")
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete inventory: %w", err)
	}

	return nil
}
