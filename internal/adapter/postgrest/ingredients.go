package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

const ingredientsTable = "ingredients"

const ingredientColumns = "id,name,normalized_name,category,unit,scope,status,owner_user_id,created_at"

type ingredientRow struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	NormalizedName string     `json:"normalized_name"`
	Category       *string    `json:"category"`
	Unit           *string    `json:"unit"`
	Scope          string     `json:"scope"`
	Status         string     `json:"status"`
	OwnerUserID    *uuid.UUID `json:"owner_user_id"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

func (r ingredientRow) toDomain() domain.Ingredient {
	ing := domain.Ingredient{
		ID:             r.ID,
		Name:           r.Name,
		NameNormalized: r.NormalizedName,
		Category:       r.Category,
		Unit:           r.Unit,
		Scope:          domain.IngredientScope(r.Scope),
		Status:         domain.IngredientStatus(r.Status),
		OwnerID:        r.OwnerUserID,
	}
	if ing.NameNormalized == "" {
		ing.NameNormalized = domain.NormalizeName(r.Name)
	}
	if r.CreatedAt != nil {
		ing.CreatedAt = *r.CreatedAt
	}
	return ing
}

type ingredientInsert struct {
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	Scope          string    `json:"scope"`
	Status         string    `json:"status"`
	OwnerUserID    uuid.UUID `json:"owner_user_id"`
}

// visibilityFilter matches active master entries plus the requester's own
// active or pending entries.
func visibilityFilter(requesterID uuid.UUID) string {
	return fmt.Sprintf(
		"or(and(scope.eq.%s,status.eq.%s),and(scope.eq.%s,owner_user_id.eq.%s,status.in.(%s,%s)))",
		domain.IngredientScopeMaster, domain.IngredientStatusActive,
		domain.IngredientScopeUser, requesterID,
		domain.IngredientStatusActive, domain.IngredientStatusPending,
	)
}

// Search returns visible entries whose normalized name starts with the
// normalized keyword or whose display name contains it.
func (c *Client) Search(ctx context.Context, keyword string, requesterID uuid.UUID, limit int) ([]domain.Ingredient, error) {
	normalized := domain.NormalizeName(keyword)
	if normalized == "" {
		return []domain.Ingredient{}, nil
	}
	raw := strings.TrimSpace(keyword)

	match := fmt.Sprintf("or(normalized_name.ilike.%s,name.ilike.%s)",
		quote(likeEscaper.Replace(normalized)+"*"),
		quote("*"+likeEscaper.Replace(raw)+"*"),
	)

	q := url.Values{}
	q.Set("select", ingredientColumns)
	q.Set("and", "("+match+","+visibilityFilter(requesterID)+")")
	q.Set("order", "normalized_name.asc,id.asc")
	q.Set("limit", strconv.Itoa(limit))

	var rows []ingredientRow
	if err := c.do(ctx, http.MethodGet, ingredientsTable, q, "", nil, &rows); err != nil {
		return nil, domain.NewRemoteReadError("search ingredients", mapError(err, "ingredient search", normalized))
	}

	out := make([]domain.Ingredient, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// FindExact returns the requester's own entry with the given normalized name.
// Returns domain.ErrNotFound when there is none.
func (c *Client) FindExact(ctx context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error) {
	q := url.Values{}
	q.Set("select", ingredientColumns)
	q.Set("scope", "eq."+string(domain.IngredientScopeUser))
	q.Set("owner_user_id", "eq."+requesterID.String())
	q.Set("normalized_name", "eq."+normalized)
	q.Set("order", "created_at.asc,id.asc")
	q.Set("limit", "1")

	var rows []ingredientRow
	if err := c.do(ctx, http.MethodGet, ingredientsTable, q, "", nil, &rows); err != nil {
		return nil, domain.NewRemoteReadError("find ingredient", mapError(err, "ingredient", normalized))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ingredient %s: %w", normalized, domain.ErrNotFound)
	}

	ing := rows[0].toDomain()
	return &ing, nil
}

// Create inserts a pending user-scoped entry owned by requesterID and returns
// it as stored. A conflict surfaces as domain.ErrAlreadyExists.
func (c *Client) Create(ctx context.Context, name string, requesterID uuid.UUID) (*domain.Ingredient, error) {
	name = strings.TrimSpace(name)
	normalized := domain.NormalizeName(name)

	payload := ingredientInsert{
		Name:           name,
		NormalizedName: normalized,
		Scope:          string(domain.IngredientScopeUser),
		Status:         string(domain.IngredientStatusPending),
		OwnerUserID:    requesterID,
	}
	q := url.Values{}
	q.Set("select", ingredientColumns)

	var rows []ingredientRow
	if err := c.do(ctx, http.MethodPost, ingredientsTable, q, "return=representation", payload, &rows); err != nil {
		return nil, domain.NewRemoteWriteError("create ingredient", mapError(err, "ingredient", normalized))
	}
	if len(rows) != 1 {
		return nil, domain.NewRemoteWriteError("create ingredient", fmt.Errorf("insert returned %d rows", len(rows)))
	}

	ing := rows[0].toDomain()
	return &ing, nil
}
