package ingredient_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres/ingredient"
	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/mealink-backend/internal/domain"
)

func TestRepo_DeleteOrphanedPending(t *testing.T) {
	t.Parallel()

	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()
	repo := ingredient.New(pool)
	me := uuid.New()

	orphan := testhelper.SeedUserIngredient(t, pool, me, testhelper.UniqueName("Orphan"), domain.IngredientStatusPending)
	used := testhelper.SeedUserIngredient(t, pool, me, testhelper.UniqueName("Used"), domain.IngredientStatusPending)
	active := testhelper.SeedUserIngredient(t, pool, me, testhelper.UniqueName("Active"), domain.IngredientStatusActive)
	fresh := testhelper.SeedUserIngredient(t, pool, me, testhelper.UniqueName("Fresh"), domain.IngredientStatusPending)

	old := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []uuid.UUID{orphan.ID, used.ID, active.ID} {
		_, err := pool.Exec(ctx, `UPDATE ingredients SET created_at = $1 WHERE id = $2`, old, id)
		require.NoError(t, err)
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO inventory (id, ingredient_id, quantity, unit, location, user_id) VALUES ($1, $2, 1, '', 'refrigerated', $3)`,
		uuid.New(), used.ID, me)
	require.NoError(t, err)

	deleted, err := repo.DeleteOrphanedPending(ctx, old.Add(24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	_, err = repo.FindExact(ctx, orphan.NameNormalized, me)
	assert.ErrorIs(t, err, domain.ErrNotFound, "orphan removed")

	for _, kept := range []domain.Ingredient{used, active, fresh} {
		_, err := repo.FindExact(ctx, kept.NameNormalized, me)
		assert.NoError(t, err, "%s kept", kept.Name)
	}
}

func TestRepo_Promote(t *testing.T) {
	t.Parallel()

	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()
	repo := ingredient.New(pool)
	me := uuid.New()

	t.Run("activate", func(t *testing.T) {
		ing := testhelper.SeedUserIngredient(t, pool, me, testhelper.UniqueName("Yuzu"), domain.IngredientStatusPending)

		require.NoError(t, repo.Promote(ctx, ing.ID, false))

		got, err := repo.FindExact(ctx, ing.NameNormalized, me)
		require.NoError(t, err)
		assert.Equal(t, domain.IngredientStatusActive, got.Status)
		assert.Equal(t, domain.IngredientScopeUser, got.Scope)
	})

	t.Run("to master", func(t *testing.T) {
		ing := testhelper.SeedUserIngredient(t, pool, me, testhelper.UniqueName("Sudachi"), domain.IngredientStatusPending)

		require.NoError(t, repo.Promote(ctx, ing.ID, true))

		stranger := uuid.New()
		found, err := repo.Search(ctx, ing.Name, stranger, 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, domain.IngredientScopeMaster, found[0].Scope)
		assert.Nil(t, found[0].OwnerID)
	})

	t.Run("not pending", func(t *testing.T) {
		ing := testhelper.SeedUserIngredient(t, pool, me, testhelper.UniqueName("Kabosu"), domain.IngredientStatusActive)

		err := repo.Promote(ctx, ing.ID, false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRepo_Promote_NoRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE ingredients SET status = .*, scope = .*, owner_id = .* WHERE`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = ingredient.New(mock).Promote(context.Background(), id, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrRemoteWrite)
	assert.NoError(t, mock.ExpectationsWereMet())
}
