package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryLine is one row of user input. It is never persisted as such.
type InventoryLine struct {
	NameInput     string
	QuantityInput string
	UnitInput     string
	Location      StorageLocation
	ExpiresAt     string

	// Selected is the suggestion the user picked for this row, if any.
	// When set, resolution uses it as is.
	Selected *Ingredient
}

// TrimmedName returns the name input without surrounding whitespace.
func (l *InventoryLine) TrimmedName() string {
	return strings.TrimSpace(l.NameInput)
}

// IsBlank reports whether the line has no usable name and should be skipped.
func (l *InventoryLine) IsBlank() bool {
	return l.TrimmedName() == ""
}

// InventoryRecord is a persisted inventory row.
type InventoryRecord struct {
	ID           uuid.UUID
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	Unit         string
	Location     StorageLocation
	ExpiresAt    *string
	OwnerID      uuid.UUID
	CreatedAt    time.Time
}

// InventoryItem is an inventory record joined with its ingredient's display fields.
type InventoryItem struct {
	InventoryRecord
	IngredientName string
	Category       *string
}

// QuantityScale is the number of decimal places a stored quantity keeps.
const QuantityScale = 3

// MaxQuantity is the exclusive upper bound of a stored quantity.
var MaxQuantity = decimal.New(1, 9)

// ParseQuantity parses raw quantity input, rounded to QuantityScale places.
// Blank, unparseable and negative input all yield zero. The result may exceed
// MaxQuantity; see QuantityInRange.
func ParseQuantity(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	q, err := decimal.NewFromString(raw)
	if err != nil || q.IsNegative() {
		return decimal.Zero
	}
	return q.Round(QuantityScale)
}

// QuantityInRange reports whether q fits the ledger's quantity column.
func QuantityInRange(q decimal.Decimal) bool {
	return q.LessThan(MaxQuantity)
}
