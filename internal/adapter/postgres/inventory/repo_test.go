package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres/inventory"
	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/mealink-backend/internal/domain"
)

func record(owner, ingredientID uuid.UUID, qty string) domain.InventoryRecord {
	return domain.InventoryRecord{
		ID:           uuid.New(),
		IngredientID: ingredientID,
		Quantity:     decimal.RequireFromString(qty),
		Unit:         "pcs",
		Location:     domain.LocationRefrigerated,
		OwnerID:      owner,
	}
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestInsertBatch_SingleStatement(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	owner := uuid.New()
	recs := []domain.InventoryRecord{
		record(owner, uuid.New(), "1"),
		record(owner, uuid.New(), "2.5"),
	}

	args := make([]any, 0, 14)
	for range recs {
		for range 7 {
			args = append(args, pgxmock.AnyArg())
		}
	}
	mock.ExpectExec(`INSERT INTO inventory \(id,ingredient_id,quantity,unit,location,expires_at,user_id\) VALUES \(\$1,.*\),\(.*\$14\)`).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	repo := inventory.New(mock, postgres.NewTxManager(mock))
	require.NoError(t, repo.InsertBatch(context.Background(), recs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_Empty(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := inventory.New(mock, postgres.NewTxManager(mock))

	require.NoError(t, repo.InsertBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_ErrorIsRemoteWrite(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO inventory`).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "ingredient missing"})

	repo := inventory.New(mock, postgres.NewTxManager(mock))
	err := repo.InsertBatch(context.Background(), []domain.InventoryRecord{record(uuid.New(), uuid.New(), "1")})

	assert.ErrorIs(t, err, domain.ErrRemoteWrite)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_LargeBatchUsesOneTransaction(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	owner := uuid.New()
	recs := make([]domain.InventoryRecord, 1500)
	for i := range recs {
		recs[i] = record(owner, uuid.New(), "1")
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO inventory`).WillReturnResult(pgxmock.NewResult("INSERT", 1000))
	mock.ExpectExec(`INSERT INTO inventory`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := inventory.New(mock, postgres.NewTxManager(mock))
	err := repo.InsertBatch(context.Background(), recs)

	assert.ErrorIs(t, err, domain.ErrRemoteWrite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_AndList_Postgres(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := inventory.New(pool, postgres.NewTxManager(pool))
	ctx := context.Background()

	owner := uuid.New()
	unit := "g"
	flour := testhelper.SeedMasterIngredient(t, pool, testhelper.UniqueName("Flour"), &unit)
	mine := testhelper.SeedUserIngredient(t, pool, owner, testhelper.UniqueName("Sourdough starter"), domain.IngredientStatusPending)

	expires := "2026-12-01"
	first := record(owner, flour.ID, "500")
	first.Unit = "g"
	first.ExpiresAt = &expires
	second := record(owner, mine.ID, "1.25")
	second.Location = domain.LocationFrozen

	require.NoError(t, repo.InsertBatch(ctx, []domain.InventoryRecord{first, second}))
	assert.Equal(t, 2, testhelper.CountInventory(t, pool, owner))

	items, err := repo.ListByOwner(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[uuid.UUID]domain.InventoryItem{}
	for _, it := range items {
		byID[it.ID] = it
	}
	got := byID[second.ID]
	assert.Equal(t, mine.Name, got.IngredientName)
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.Quantity))
	assert.Equal(t, domain.LocationFrozen, got.Location)
	assert.Nil(t, got.ExpiresAt)

	got = byID[first.ID]
	require.NotNil(t, got.ExpiresAt)
	assert.Equal(t, expires, *got.ExpiresAt)
}

func TestInsertBatch_Atomic_Postgres(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := inventory.New(pool, postgres.NewTxManager(pool))
	ctx := context.Background()

	owner := uuid.New()
	ing := testhelper.SeedUserIngredient(t, pool, owner, testhelper.UniqueName("Leek"), domain.IngredientStatusPending)

	// The second record references an ingredient that does not exist.
	err := repo.InsertBatch(ctx, []domain.InventoryRecord{
		record(owner, ing.ID, "1"),
		record(owner, uuid.New(), "1"),
	})

	require.ErrorIs(t, err, domain.ErrRemoteWrite)
	assert.Equal(t, 0, testhelper.CountInventory(t, pool, owner))
}
