package ingredient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// Search returns catalog entries visible to requesterID that match keyword.
// A keyword that normalizes to empty returns an empty list without touching
// the store.
func (s *Service) Search(ctx context.Context, keyword string, requesterID uuid.UUID) ([]domain.Ingredient, error) {
	if s.catalog == nil {
		return nil, domain.ErrBackendUnavailable
	}
	if domain.NormalizeName(keyword) == "" {
		return []domain.Ingredient{}, nil
	}
	if requesterID == uuid.Nil {
		return nil, domain.ErrAuthRequired
	}

	found, err := s.catalog.Search(ctx, strings.TrimSpace(keyword), requesterID, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search ingredients: %w", err)
	}

	// Remote stores apply the visibility rule themselves; anything that
	// slips through is dropped rather than shown to another user.
	visible := found[:0]
	for i := range found {
		if found[i].VisibleTo(requesterID) {
			visible = append(visible, found[i])
			continue
		}
		s.log.WarnContext(ctx, "store returned an ingredient not visible to requester",
			slog.String("ingredient_id", found[i].ID.String()),
			slog.String("scope", string(found[i].Scope)),
			slog.String("status", string(found[i].Status)),
		)
	}

	return visible, nil
}
