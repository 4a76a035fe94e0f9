// Package ingredient implements the ingredient catalog on PostgreSQL.
package ingredient

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres"
	"github.com/heartmarshall/mealink-backend/internal/domain"
)

const table = "ingredients"

var columns = []string{
	"id", "name", "name_normalized", "category", "unit",
	"scope", "status", "owner_id", "created_at",
}

// Repo provides catalog persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new ingredient repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID             uuid.UUID  `db:"id"`
	Name           string     `db:"name"`
	NameNormalized string     `db:"name_normalized"`
	Category       *string    `db:"category"`
	Unit           *string    `db:"unit"`
	Scope          string     `db:"scope"`
	Status         string     `db:"status"`
	OwnerID        *uuid.UUID `db:"owner_id"`
	CreatedAt      time.Time  `db:"created_at"`
}

func (r row) toDomain() domain.Ingredient {
	return domain.Ingredient{
		ID:             r.ID,
		Name:           r.Name,
		NameNormalized: r.NameNormalized,
		Category:       r.Category,
		Unit:           r.Unit,
		Scope:          domain.IngredientScope(r.Scope),
		Status:         domain.IngredientStatus(r.Status),
		OwnerID:        r.OwnerID,
		CreatedAt:      r.CreatedAt,
	}
}

// visibleTo restricts rows to active master entries plus the requester's own
// active or pending entries.
func visibleTo(requesterID uuid.UUID) sq.Sqlizer {
	return sq.Or{
		sq.Eq{"scope": string(domain.IngredientScopeMaster), "status": string(domain.IngredientStatusActive)},
		sq.And{
			sq.Eq{"scope": string(domain.IngredientScopeUser), "owner_id": requesterID},
			sq.Eq{"status": []string{string(domain.IngredientStatusActive), string(domain.IngredientStatusPending)}},
		},
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns visible entries whose normalized name starts with the
// normalized keyword or whose display name contains it. Blank keywords
// return an empty result without a query.
func (r *Repo) Search(ctx context.Context, keyword string, requesterID uuid.UUID, limit int) ([]domain.Ingredient, error) {
	normalized := domain.NormalizeName(keyword)
	if normalized == "" {
		return []domain.Ingredient{}, nil
	}

	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Or{
			sq.ILike{"name_normalized": likeEscaper.Replace(normalized) + "%"},
			sq.ILike{"name": "%" + likeEscaper.Replace(strings.TrimSpace(keyword)) + "%"},
		}).
		Where(visibleTo(requesterID)).
		OrderBy("name_normalized ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, domain.NewRemoteReadError("search ingredients", postgres.MapError(err, "ingredient search", normalized))
	}

	out := make([]domain.Ingredient, len(rows))
	for i, rw := range rows {
		out[i] = rw.toDomain()
	}
	return out, nil
}

// FindExact returns the requester's own entry with the given normalized name.
// Returns domain.ErrNotFound when there is none.
func (r *Repo) FindExact(ctx context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{
			"scope":           string(domain.IngredientScopeUser),
			"owner_id":        requesterID,
			"name_normalized": normalized,
		}).
		OrderBy("created_at ASC", "id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, domain.NewRemoteReadError("find ingredient", postgres.MapError(err, "ingredient", normalized))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ingredient %s: %w", normalized, domain.ErrNotFound)
	}

	ing := rows[0].toDomain()
	return &ing, nil
}

// Create inserts a pending user-scoped entry owned by requesterID and returns
// it with the server-assigned id. A unique violation surfaces as
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, name string, requesterID uuid.UUID) (*domain.Ingredient, error) {
	name = strings.TrimSpace(name)
	normalized := domain.NormalizeName(name)

	query, args, err := postgres.Builder().
		Insert(table).
		Columns("name", "name_normalized", "scope", "status", "owner_id").
		Values(name, normalized, string(domain.IngredientScopeUser), string(domain.IngredientStatusPending), requesterID).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, domain.NewRemoteWriteError("create ingredient", postgres.MapError(err, "ingredient", normalized))
	}
	if len(rows) != 1 {
		return nil, domain.NewRemoteWriteError("create ingredient", fmt.Errorf("insert returned %d rows", len(rows)))
	}

	ing := rows[0].toDomain()
	return &ing, nil
}
