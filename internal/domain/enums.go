package domain

// IngredientScope tells curated catalog entries apart from user submissions.
type IngredientScope string

const (
	IngredientScopeMaster IngredientScope = "master"
	IngredientScopeUser   IngredientScope = "user"
)

func (s IngredientScope) String() string { return string(s) }

func (s IngredientScope) IsValid() bool {
	switch s {
	case IngredientScopeMaster, IngredientScopeUser:
		return true
	}
	return false
}

// IngredientStatus is the curation state of a catalog entry.
type IngredientStatus string

const (
	IngredientStatusActive  IngredientStatus = "active"
	IngredientStatusPending IngredientStatus = "pending"
)

func (s IngredientStatus) String() string { return string(s) }

func (s IngredientStatus) IsValid() bool {
	switch s {
	case IngredientStatusActive, IngredientStatusPending:
		return true
	}
	return false
}

// StorageLocation is where an inventory item is kept.
type StorageLocation string

const (
	LocationRefrigerated StorageLocation = "refrigerated"
	LocationFrozen       StorageLocation = "frozen"
	LocationAmbient      StorageLocation = "ambient"
)

// DefaultLocation is used when a line does not name a location.
const DefaultLocation = LocationRefrigerated

func (l StorageLocation) String() string { return string(l) }

func (l StorageLocation) IsValid() bool {
	switch l {
	case LocationRefrigerated, LocationFrozen, LocationAmbient:
		return true
	}
	return false
}

// OrDefault returns the location, or DefaultLocation when it is empty.
func (l StorageLocation) OrDefault() StorageLocation {
	if l == "" {
		return DefaultLocation
	}
	return l
}

// AllLocations lists the supported storage locations in display order.
func AllLocations() []StorageLocation {
	return []StorageLocation{LocationRefrigerated, LocationFrozen, LocationAmbient}
}
