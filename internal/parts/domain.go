package parts

import "time"

// Part type classifications.
const (
	TypeInventory    = "Inventory"
	TypeNonInventory = "Non-Inventory"
	TypeService      = "Service"
)

// Replenishment systems.
const (
	ReplenishBuy        = "Buy"
	ReplenishMake       = "Make"
	ReplenishBuyAndMake = "Buy and Make"
)

// Part is a purchasable or manufacturable item.
type Part struct {
	ID            int64
	Code          string
	Name          string
	Description   string
	PartType      string
	Replenishment string
	UnitOfMeasure string
	GroupID       int64
	UnitCost      float64
	LeadTimeDays  int
	Active        bool
	Blocked       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UpdatedBy     int64
}

// PartGroup buckets parts for reporting. Description may be empty.
type PartGroup struct {
	ID          int64
	Name        string
	Description string
}

// UnitOfMeasure is a master record referenced by part code.
type UnitOfMeasure struct {
	ID   int64
	Code string
	Name string
}

// PartTypes lists the declared part type literals in display order.
func PartTypes() []string {
	return []string{TypeInventory, TypeNonInventory, TypeService}
}

// ReplenishmentSystems lists the declared replenishment literals in display order.
func ReplenishmentSystems() []string {
	return []string{ReplenishBuy, ReplenishMake, ReplenishBuyAndMake}
}
