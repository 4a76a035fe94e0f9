package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
	"github.com/heartmarshall/mealink-backend/internal/identity"
	"github.com/heartmarshall/mealink-backend/internal/service/inventory"
)

const maxBodyBytes = 1 << 20

type catalogService interface {
	Search(ctx context.Context, keyword string, requesterID uuid.UUID) ([]domain.Ingredient, error)
}

type inventoryService interface {
	Ingest(ctx context.Context, requesterID uuid.UUID, lines []domain.InventoryLine) (*inventory.Result, error)
	List(ctx context.Context, requesterID uuid.UUID, limit int) ([]domain.InventoryItem, error)
}

// InventoryHandler serves ingredient search and inventory endpoints.
type InventoryHandler struct {
	catalog  catalogService
	inv      inventoryService
	identity identity.Provider
	validate *validator.Validate
	log      *slog.Logger
}

// NewInventoryHandler creates an InventoryHandler.
func NewInventoryHandler(
	catalog catalogService,
	inv inventoryService,
	ident identity.Provider,
	validate *validator.Validate,
	logger *slog.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		catalog:  catalog,
		inv:      inv,
		identity: ident,
		validate: validate,
		log:      logger.With("handler", "inventory"),
	}
}

type ingestRequest struct {
	Lines []lineRequest `json:"lines" validate:"required,min=1,max=200,dive"`
}

type lineRequest struct {
	Name      string             `json:"name"       validate:"max=200"`
	Quantity  string             `json:"quantity"   validate:"max=32"`
	Unit      string             `json:"unit"       validate:"max=32"`
	Location  string             `json:"location"   validate:"max=32"`
	ExpiresAt string             `json:"expires_at" validate:"max=64"`
	Selected  *ingredientRequest `json:"selected"   validate:"omitempty"`
}

// ingredientRequest echoes a suggestion the client picked from a search.
type ingredientRequest struct {
	ID       uuid.UUID `json:"id"       validate:"required"`
	Name     string    `json:"name"     validate:"required,max=200"`
	Category *string   `json:"category"`
	Unit     *string   `json:"unit"`
}

type ingredientResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category *string   `json:"category,omitempty"`
	Unit     *string   `json:"unit,omitempty"`
	Scope    string    `json:"scope"`
	Status   string    `json:"status"`
}

type recordResponse struct {
	ID             uuid.UUID `json:"id"`
	IngredientID   uuid.UUID `json:"ingredient_id"`
	IngredientName string    `json:"ingredient_name,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Quantity       string    `json:"quantity"`
	Unit           string    `json:"unit"`
	Location       string    `json:"location"`
	ExpiresAt      *string   `json:"expires_at,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ingestResponse struct {
	Written int              `json:"written"`
	Skipped int              `json:"skipped"`
	Records []recordResponse `json:"records"`
}

func (h *InventoryHandler) currentUser(ctx context.Context) uuid.UUID {
	if h.identity == nil {
		return uuid.Nil
	}
	id, _ := h.identity.CurrentUserID(ctx)
	return id
}

// SearchIngredients handles GET /v1/ingredients?q=.
func (h *InventoryHandler) SearchIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	found, err := h.catalog.Search(ctx, r.URL.Query().Get("q"), h.currentUser(ctx))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]ingredientResponse, len(found))
	for i, ing := range found {
		out[i] = ingredientResponse{
			ID:       ing.ID,
			Name:     ing.Name,
			Category: ing.Category,
			Unit:     ing.Unit,
			Scope:    ing.Scope.String(),
			Status:   ing.Status.String(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingredients": out})
}

// Ingest handles POST /v1/inventory.
func (h *InventoryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidation(w, err)
		return
	}

	ctx := r.Context()
	res, err := h.inv.Ingest(ctx, h.currentUser(ctx), toLines(req.Lines))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := ingestResponse{
		Written: res.Written(),
		Skipped: res.Skipped,
		Records: make([]recordResponse, len(res.Records)),
	}
	for i, rec := range res.Records {
		resp.Records[i] = toRecordResponse(rec)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /v1/inventory?limit=.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx := r.Context()
	items, err := h.inv.List(ctx, h.currentUser(ctx), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]recordResponse, len(items))
	for i, it := range items {
		out[i] = toRecordResponse(it.InventoryRecord)
		out[i].IngredientName = it.IngredientName
		out[i].Category = it.Category
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func toLines(reqs []lineRequest) []domain.InventoryLine {
	lines := make([]domain.InventoryLine, len(reqs))
	for i, lr := range reqs {
		lines[i] = domain.InventoryLine{
			NameInput:     lr.Name,
			QuantityInput: lr.Quantity,
			UnitInput:     lr.Unit,
			Location:      domain.StorageLocation(lr.Location),
			ExpiresAt:     lr.ExpiresAt,
		}
		if sel := lr.Selected; sel != nil {
			lines[i].Selected = &domain.Ingredient{
				ID:             sel.ID,
				Name:           sel.Name,
				NameNormalized: domain.NormalizeName(sel.Name),
				Category:       sel.Category,
				Unit:           sel.Unit,
			}
		}
	}
	return lines
}

func toRecordResponse(rec domain.InventoryRecord) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		IngredientID: rec.IngredientID,
		Quantity:     rec.Quantity.String(),
		Unit:         rec.Unit,
		Location:     rec.Location.String(),
		ExpiresAt:    rec.ExpiresAt,
		CreatedAt:    rec.CreatedAt,
	}
}
