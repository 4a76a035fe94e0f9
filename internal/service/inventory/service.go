package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type resolver interface {
	Resolve(ctx context.Context, line domain.InventoryLine, requesterID uuid.UUID) (*domain.Ingredient, error)
}

type ledgerStore interface {
	InsertBatch(ctx context.Context, records []domain.InventoryRecord) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.InventoryItem, error)
}

type notifier interface {
	InventoryRecorded(ctx context.Context, ownerID uuid.UUID, records []domain.InventoryRecord) error
}

type ingestMetrics interface {
	Written(n int)
	IngestFailed(reason string)
}

// Service implements inventory ingestion and listing.
type Service struct {
	log      *slog.Logger
	resolver resolver
	ledger   ledgerStore
	notifier notifier
	metrics  ingestMetrics
	now      func() time.Time
}

// NewService creates a new inventory service. resolver and ledger may be nil
// (no backend configured); notifier and metrics are optional.
func NewService(
	logger *slog.Logger,
	resolver resolver,
	ledger ledgerStore,
	notifier notifier,
	metrics ingestMetrics,
) *Service {
	return &Service{
		log:      logger.With("service", "inventory"),
		resolver: resolver,
		ledger:   ledger,
		notifier: notifier,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Result describes a successful ingestion.
type Result struct {
	Records []domain.InventoryRecord
	Skipped int
}

// Written is the number of records persisted.
func (r *Result) Written() int {
	return len(r.Records)
}

func (s *Service) failed(reason string) {
	if s.metrics != nil {
		s.metrics.IngestFailed(reason)
	}
}
