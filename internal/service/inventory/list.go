package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// List returns the requester's most recent inventory items.
// limit is clamped to [1, 500]; zero selects 100.
func (s *Service) List(ctx context.Context, requesterID uuid.UUID, limit int) ([]domain.InventoryItem, error) {
	if s.ledger == nil {
		return nil, domain.ErrBackendUnavailable
	}
	if requesterID == uuid.Nil {
		return nil, domain.ErrAuthRequired
	}

	switch {
	case limit == 0:
		limit = defaultListLimit
	case limit < 1:
		limit = 1
	case limit > maxListLimit:
		limit = maxListLimit
	}

	items, err := s.ledger.ListByOwner(ctx, requesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}
