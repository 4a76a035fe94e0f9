package ingredient

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// DeleteOrphanedPending removes pending user entries created before the
// threshold that no inventory record references. Such entries are left behind
// when an ingestion resolves new names and its batch insert then fails.
func (r *Repo) DeleteOrphanedPending(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := postgres.Builder().
		Delete(table + " i").
		Where(sq.Eq{
			"i.scope":  string(domain.IngredientScopeUser),
			"i.status": string(domain.IngredientStatusPending),
		}).
		Where(sq.Lt{"i.created_at": before}).
		Where("NOT EXISTS (SELECT 1 FROM inventory inv WHERE inv.ingredient_id = i.id)").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, domain.NewRemoteWriteError("delete orphaned ingredients", postgres.MapError(err, "ingredient", ""))
	}
	return tag.RowsAffected(), nil
}

// Promote activates a pending user entry. With toMaster the entry also moves
// into the shared catalog and loses its owner.
// Returns domain.ErrNotFound when no pending user entry has that id.
func (r *Repo) Promote(ctx context.Context, id uuid.UUID, toMaster bool) error {
	b := postgres.Builder().
		Update(table).
		Set("status", string(domain.IngredientStatusActive)).
		Where(sq.Eq{
			"id":     id,
			"scope":  string(domain.IngredientScopeUser),
			"status": string(domain.IngredientStatusPending),
		})
	if toMaster {
		b = b.Set("scope", string(domain.IngredientScopeMaster)).Set("owner_id", nil)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build promote query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return domain.NewRemoteWriteError("promote ingredient", postgres.MapError(err, "ingredient", id.String()))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending ingredient %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
