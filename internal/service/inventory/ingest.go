package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// Ingest resolves every non-blank line to a catalog entry, one at a time and
// in order, then writes all resulting records with a single batch call.
//
// Nothing is written unless every line resolves. Lines whose trimmed name is
// empty are skipped. When no line remains the call succeeds without touching
// the ledger. Resolution failures are reported as *domain.LineError.
func (s *Service) Ingest(ctx context.Context, requesterID uuid.UUID, lines []domain.InventoryLine) (*Result, error) {
	if s.ledger == nil || s.resolver == nil {
		s.failed("backend")
		return nil, domain.ErrBackendUnavailable
	}
	if requesterID == uuid.Nil {
		s.failed("auth")
		return nil, domain.ErrAuthRequired
	}
	if err := validateLines(lines); err != nil {
		s.failed("validation")
		return nil, err
	}

	result := &Result{Records: make([]domain.InventoryRecord, 0, len(lines))}
	now := s.now().UTC()

	for i, line := range lines {
		if line.IsBlank() {
			result.Skipped++
			continue
		}

		ing, err := s.resolver.Resolve(ctx, line, requesterID)
		if err != nil {
			s.failed(failureReason(err))
			s.log.WarnContext(ctx, "ingest aborted: line did not resolve",
				slog.Int("line", i+1),
				slog.String("user_id", requesterID.String()),
				slog.String("error", err.Error()),
			)
			return nil, &domain.LineError{Index: i, Err: err}
		}

		result.Records = append(result.Records, buildRecord(line, ing, requesterID, now))
	}

	if len(result.Records) == 0 {
		return result, nil
	}

	// A batch that has started writing runs to completion.
	writeCtx := context.WithoutCancel(ctx)
	if err := s.ledger.InsertBatch(writeCtx, result.Records); err != nil {
		s.failed(failureReason(err))
		s.log.ErrorContext(ctx, "inventory batch insert failed",
			slog.Int("records", len(result.Records)),
			slog.String("user_id", requesterID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("insert inventory batch: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Written(len(result.Records))
	}
	s.log.InfoContext(ctx, "inventory recorded",
		slog.Int("records", len(result.Records)),
		slog.Int("skipped", result.Skipped),
		slog.String("user_id", requesterID.String()),
	)

	if s.notifier != nil {
		if err := s.notifier.InventoryRecorded(writeCtx, requesterID, result.Records); err != nil {
			s.log.WarnContext(ctx, "inventory event not published", slog.String("error", err.Error()))
		}
	}

	return result, nil
}

func validateLines(lines []domain.InventoryLine) error {
	var errs []domain.FieldError
	for i, line := range lines {
		if line.IsBlank() {
			continue
		}
		if line.Location != "" && !line.Location.IsValid() {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("lines[%d].location", i),
				Message: fmt.Sprintf("unknown location %q", line.Location),
			})
		}
		if !domain.QuantityInRange(domain.ParseQuantity(line.QuantityInput)) {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: "must be less than " + domain.MaxQuantity.String(),
			})
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func buildRecord(line domain.InventoryLine, ing *domain.Ingredient, ownerID uuid.UUID, now time.Time) domain.InventoryRecord {
	unit := strings.TrimSpace(line.UnitInput)
	if unit == "" {
		unit = ing.DefaultUnit()
	}

	var expires *string
	if e := strings.TrimSpace(line.ExpiresAt); e != "" {
		expires = &e
	}

	return domain.InventoryRecord{
		ID:           uuid.New(),
		IngredientID: ing.ID,
		Quantity:     domain.ParseQuantity(line.QuantityInput),
		Unit:         unit,
		Location:     line.Location.OrDefault(),
		ExpiresAt:    expires,
		OwnerID:      ownerID,
		CreatedAt:    now,
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyName), errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrAuthRequired):
		return "auth"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "backend"
	case errors.Is(err, domain.ErrRemoteWrite):
		return "remote_write"
	case errors.Is(err, domain.ErrRemoteRead):
		return "remote_read"
	}
	return "other"
}
