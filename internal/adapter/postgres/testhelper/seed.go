package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// UniqueName returns prefix with a short random suffix so that parallel
// tests never collide on the (owner, name) index.
func UniqueName(prefix string) string {
	return prefix + " " + uuid.New().String()[:8]
}

// SeedMasterIngredient inserts an active master-catalog ingredient.
func SeedMasterIngredient(t *testing.T, pool *pgxpool.Pool, name string, unit *string) domain.Ingredient {
	t.Helper()
	return seedIngredient(t, pool, name, unit, domain.IngredientScopeMaster, domain.IngredientStatusActive, nil)
}

// SeedUserIngredient inserts a user-scoped ingredient with the given status.
func SeedUserIngredient(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, name string, status domain.IngredientStatus) domain.Ingredient {
	t.Helper()
	return seedIngredient(t, pool, name, nil, domain.IngredientScopeUser, status, &ownerID)
}

func seedIngredient(
	t *testing.T,
	pool *pgxpool.Pool,
	name string,
	unit *string,
	scope domain.IngredientScope,
	status domain.IngredientStatus,
	ownerID *uuid.UUID,
) domain.Ingredient {
	t.Helper()

	ing := domain.Ingredient{
		Name:           name,
		NameNormalized: domain.NormalizeName(name),
		Unit:           unit,
		Scope:          scope,
		Status:         status,
		OwnerID:        ownerID,
	}

	err := pool.QueryRow(context.Background(),
		`INSERT INTO ingredients (name, name_normalized, unit, scope, status, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		ing.Name, ing.NameNormalized, ing.Unit, string(ing.Scope), string(ing.Status), ing.OwnerID,
	).Scan(&ing.ID, &ing.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: seed ingredient %q: %v", name, err)
	}

	return ing
}

// CountInventory returns the number of inventory rows owned by userID.
func CountInventory(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM inventory WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("testhelper: count inventory: %v", err)
	}
	return n
}
