package resources

import "time"

// EquipmentType classifies plant equipment for capacity planning.
type EquipmentType struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UpdatedBy   int64
}

// Location is a physical site or warehouse area.
type Location struct {
	ID          int64
	Code        string
	Name        string
	Description string
}
