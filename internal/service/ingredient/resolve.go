package ingredient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// Resolve maps one input line to exactly one catalog entry.
//
// A picked suggestion is returned as is. Otherwise the requester's own entry
// with the same normalized name is reused, and only when there is none a new
// pending entry is created. If the store rejects the create because a
// concurrent writer already inserted the name, the existing entry is re-read.
func (s *Service) Resolve(ctx context.Context, line domain.InventoryLine, requesterID uuid.UUID) (*domain.Ingredient, error) {
	if line.Selected != nil {
		return line.Selected, nil
	}

	name := line.TrimmedName()
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	if s.catalog == nil {
		return nil, domain.ErrBackendUnavailable
	}
	if requesterID == uuid.Nil {
		return nil, domain.ErrAuthRequired
	}

	normalized := domain.NormalizeName(name)

	existing, err := s.catalog.FindExact(ctx, normalized, requesterID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find ingredient %q: %w", normalized, err)
	}

	created, err := s.catalog.Create(ctx, name, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, findErr := s.catalog.FindExact(ctx, normalized, requesterID)
			if findErr != nil {
				return nil, fmt.Errorf("find ingredient after conflict: %w", findErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create ingredient %q: %w", name, err)
	}

	if s.metrics != nil {
		s.metrics.IngredientCreated()
	}
	s.log.InfoContext(ctx, "ingredient created",
		slog.String("ingredient_id", created.ID.String()),
		slog.String("name", created.Name),
		slog.String("user_id", requesterID.String()),
	)

	return created, nil
}
