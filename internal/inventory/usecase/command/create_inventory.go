package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// CreateInventoryCommand represents the command to create an inventory item
type CreateInventoryCommand struct {
	ID        string
	Name      string
	Quantity  int64
	Location  string
	Threshold int64
	UnitPrice decimal.Decimal
	ActorID   string
}

// CreateInventoryHandler handles create inventory command
type CreateInventoryHandler struct {
	repo domain.InventoryRepository
}

// NewCreateInventoryHandler creates a new create inventory handler
func NewCreateInventoryHandler(repo domain.InventoryRepository) *CreateInventoryHandler {
	return &CreateInventoryHandler{repo: repo}
}

// Handle executes the create inventory command
func (h *CreateInventoryHandler) Handle(ctx context.Context, cmd CreateInventoryCommand) (*domain.InventoryItem, error) {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}

	item := &domain.InventoryItem{
		ID:        cmd.ID,
		Name:      cmd.Name,
		Quantity:  cmd.Quantity,
		Location:  domain.Location(cmd.Location),
		Threshold: cmd.Threshold,
		UnitPrice: cmd.UnitPrice,
		UpdatedBy: cmd.ActorID,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}

	return item, nil
}
