package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// GetMovementHandler loads one ledger record
type GetMovementHandler struct {
	repo domain.MovementRepository
}

func NewGetMovementHandler(repo domain.MovementRepository) *GetMovementHandler {
	return &GetMovementHandler{repo: repo}
}

func (h *GetMovementHandler) Handle(ctx context.Context, id string) (*domain.MovementRecord, error) {
	if id == "" {
		return nil, domain.NewValidationError("get movement", "id is required")
	}
	m, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}
	return m, nil
}
