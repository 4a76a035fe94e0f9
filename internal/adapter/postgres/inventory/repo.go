// Package inventory implements the inventory ledger on PostgreSQL.
package inventory

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mealink-backend/internal/domain"
)

const table = "inventory"

// maxRowsPerStatement keeps one INSERT well below the 65535 bind parameter
// limit of the wire protocol.
const maxRowsPerStatement = 1000

var insertColumns = []string{
	"id", "ingredient_id", "quantity", "unit", "location", "expires_at", "user_id",
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo provides ledger persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.Querier
	txm txRunner
}

// New creates a new inventory repository.
func New(db postgres.Querier, txm txRunner) *Repo {
	return &Repo{db: db, txm: txm}
}

// InsertBatch writes all records or none. Batches that fit into one statement
// are written with a single multi-row INSERT; larger ones are split into
// several statements inside one transaction.
func (r *Repo) InsertBatch(ctx context.Context, records []domain.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	if len(records) <= maxRowsPerStatement {
		return r.insert(ctx, records)
	}

	return r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		for start := 0; start < len(records); start += maxRowsPerStatement {
			end := min(start+maxRowsPerStatement, len(records))
			if err := r.insert(txCtx, records[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) insert(ctx context.Context, records []domain.InventoryRecord) error {
	b := postgres.Builder().Insert(table).Columns(insertColumns...)
	for _, rec := range records {
		b = b.Values(
			rec.ID,
			rec.IngredientID,
			rec.Quantity,
			rec.Unit,
			string(rec.Location.OrDefault()),
			rec.ExpiresAt,
			rec.OwnerID,
		)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return domain.NewRemoteWriteError("insert inventory", postgres.MapError(err, "inventory", ""))
	}
	if tag.RowsAffected() != int64(len(records)) {
		return domain.NewRemoteWriteError("insert inventory",
			fmt.Errorf("inserted %d of %d rows", tag.RowsAffected(), len(records)))
	}

	return nil
}

type itemRow struct {
	ID             uuid.UUID       `db:"id"`
	IngredientID   uuid.UUID       `db:"ingredient_id"`
	Quantity       decimal.Decimal `db:"quantity"`
	Unit           string          `db:"unit"`
	Location       string          `db:"location"`
	ExpiresAt      *string         `db:"expires_at"`
	OwnerID        uuid.UUID       `db:"user_id"`
	CreatedAt      time.Time       `db:"created_at"`
	IngredientName string          `db:"ingredient_name"`
	Category       *string         `db:"category"`
}

// ListByOwner returns ownerID's most recent inventory items with their
// ingredient display fields.
func (r *Repo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.InventoryItem, error) {
	query, args, err := postgres.Builder().
		Select(
			"inv.id", "inv.ingredient_id", "inv.quantity", "inv.unit", "inv.location",
			"inv.expires_at", "inv.user_id", "inv.created_at",
			"ing.name AS ingredient_name", "ing.category",
		).
		From(table+" inv").
		Join("ingredients ing ON ing.id = inv.ingredient_id").
		Where(sq.Eq{"inv.user_id": ownerID}).
		OrderBy("inv.created_at DESC", "inv.id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, domain.NewRemoteReadError("list inventory", postgres.MapError(err, "inventory", ownerID.String()))
	}

	items := make([]domain.InventoryItem, len(rows))
	for i, rw := range rows {
		items[i] = domain.InventoryItem{
			InventoryRecord: domain.InventoryRecord{
				ID:           rw.ID,
				IngredientID: rw.IngredientID,
				Quantity:     rw.Quantity,
				Unit:         rw.Unit,
				Location:     domain.StorageLocation(rw.Location),
				ExpiresAt:    rw.ExpiresAt,
				OwnerID:      rw.OwnerID,
				CreatedAt:    rw.CreatedAt,
			},
			IngredientName: rw.IngredientName,
			Category:       rw.Category,
		}
	}
	return items, nil
}
