package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ingredient is a catalog entry. Master entries are curated and shared;
// user entries are private to OwnerID and start out pending.
type Ingredient struct {
	ID             uuid.UUID
	Name           string
	NameNormalized string
	Category       *string
	Unit           *string
	Scope          IngredientScope
	Status         IngredientStatus
	OwnerID        *uuid.UUID
	CreatedAt      time.Time
}

// IsOwnedBy reports whether the entry is a user entry owned by userID.
func (i *Ingredient) IsOwnedBy(userID uuid.UUID) bool {
	return i.Scope == IngredientScopeUser && i.OwnerID != nil && *i.OwnerID == userID
}

// VisibleTo reports whether the entry may appear in userID's search results:
// active master entries, plus the user's own active or pending entries.
func (i *Ingredient) VisibleTo(userID uuid.UUID) bool {
	switch i.Scope {
	case IngredientScopeMaster:
		return i.Status == IngredientStatusActive
	case IngredientScopeUser:
		return i.IsOwnedBy(userID) &&
			(i.Status == IngredientStatusActive || i.Status == IngredientStatusPending)
	}
	return false
}

// DefaultUnit returns the entry's unit or "" when it has none.
func (i *Ingredient) DefaultUnit() string {
	if i.Unit == nil {
		return ""
	}
	return *i.Unit
}
