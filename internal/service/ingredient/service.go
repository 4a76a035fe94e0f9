package ingredient

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type catalogStore interface {
	Search(ctx context.Context, keyword string, requesterID uuid.UUID, limit int) ([]domain.Ingredient, error)
	FindExact(ctx context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error)
	Create(ctx context.Context, name string, requesterID uuid.UUID) (*domain.Ingredient, error)
}

type createdRecorder interface {
	IngredientCreated()
}

// Service implements catalog search and ingredient resolution.
type Service struct {
	log         *slog.Logger
	catalog     catalogStore
	metrics     createdRecorder
	searchLimit int
}

// NewService creates a new ingredient service. catalog may be nil, in which
// case every operation fails with domain.ErrBackendUnavailable.
// searchLimit is clamped to [1, 50]; zero selects the default of 10.
func NewService(logger *slog.Logger, catalog catalogStore, metrics createdRecorder, searchLimit int) *Service {
	return &Service{
		log:         logger.With("service", "ingredient"),
		catalog:     catalog,
		metrics:     metrics,
		searchLimit: clampLimit(searchLimit),
	}
}

func clampLimit(limit int) int {
	switch {
	case limit == 0:
		return defaultSearchLimit
	case limit < 1:
		return 1
	case limit > maxSearchLimit:
		return maxSearchLimit
	}
	return limit
}
