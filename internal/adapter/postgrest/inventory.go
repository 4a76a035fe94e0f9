package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

const inventoryTable = "inventory"

type inventoryRow struct {
	ID           uuid.UUID       `json:"id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Location     string          `json:"location"`
	ExpiresAt    *string         `json:"expires_at"`
	UserID       uuid.UUID       `json:"user_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

type inventoryItemRow struct {
	inventoryRow
	Ingredient *struct {
		Name     string  `json:"name"`
		Category *string `json:"category"`
	} `json:"ingredients"`
}

// InsertBatch writes all records with one request. PostgREST runs a bulk
// insert in a single statement, so the batch is stored entirely or not at all.
func (c *Client) InsertBatch(ctx context.Context, records []domain.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]inventoryRow, len(records))
	for i, rec := range records {
		rows[i] = inventoryRow{
			ID:           rec.ID,
			IngredientID: rec.IngredientID,
			Quantity:     rec.Quantity,
			Unit:         rec.Unit,
			Location:     string(rec.Location.OrDefault()),
			ExpiresAt:    rec.ExpiresAt,
			UserID:       rec.OwnerID,
			CreatedAt:    rec.CreatedAt.UTC(),
		}
	}

	if err := c.do(ctx, http.MethodPost, inventoryTable, nil, "return=minimal", rows, nil); err != nil {
		return domain.NewRemoteWriteError("insert inventory", mapError(err, "inventory", ""))
	}
	return nil
}

// ListByOwner returns ownerID's most recent inventory items with their
// ingredient display fields, using an embedded resource select.
func (c *Client) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.InventoryItem, error) {
	q := url.Values{}
	q.Set("select", "id,ingredient_id,quantity,unit,location,expires_at,user_id,created_at,ingredients(name,category)")
	q.Set("user_id", "eq."+ownerID.String())
	q.Set("order", "created_at.desc,id.asc")
	q.Set("limit", strconv.Itoa(limit))

	var rows []inventoryItemRow
	if err := c.do(ctx, http.MethodGet, inventoryTable, q, "", nil, &rows); err != nil {
		return nil, domain.NewRemoteReadError("list inventory", mapError(err, "inventory", ownerID.String()))
	}

	items := make([]domain.InventoryItem, len(rows))
	for i, r := range rows {
		items[i] = domain.InventoryItem{
			InventoryRecord: domain.InventoryRecord{
				ID:           r.ID,
				IngredientID: r.IngredientID,
				Quantity:     r.Quantity,
				Unit:         r.Unit,
				Location:     domain.StorageLocation(r.Location).OrDefault(),
				ExpiresAt:    r.ExpiresAt,
				OwnerID:      r.UserID,
				CreatedAt:    r.CreatedAt,
			},
		}
		if r.Ingredient != nil {
			items[i].IngredientName = r.Ingredient.Name
			items[i].Category = r.Ingredient.Category
		} else {
			items[i].IngredientName = fmt.Sprintf("ingredient %s", r.IngredientID.String()[:8])
		}
	}
	return items, nil
}
