package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleStatus is the availability status of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "Available"
	VehicleReserved    VehicleStatus = "Reserved"
	VehicleSold        VehicleStatus = "Sold"
	VehicleMaintenance VehicleStatus = "Maintenance"
	VehicleUnavailable VehicleStatus = "Unavailable"
)

// ValidVehicleStatus reports whether s is one of the enumerated statuses.
func ValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehicleAvailable, VehicleReserved, VehicleSold, VehicleMaintenance, VehicleUnavailable:
		return true
	}
	return false
}

// FuelType is the vehicle fuel type.
type FuelType string

const (
	FuelGasoline FuelType = "Gasoline"
	FuelDiesel   FuelType = "Diesel"
	FuelHybrid   FuelType = "Hybrid"
	FuelElectric FuelType = "Electric"
)

// Gearbox is the vehicle transmission type.
type Gearbox string

const (
	GearboxManual    Gearbox = "Manual"
	GearboxAutomatic Gearbox = "Automatic"
)

// Vehicle represents a vehicle in the dealership inventory.
type Vehicle struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Make        string          `json:"make" db:"make"`
	Model       string          `json:"model" db:"model"`
	Year        int             `json:"year" db:"year"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Mileage     int             `json:"mileage" db:"mileage"`
	FuelType    FuelType        `json:"fuelType" db:"fuel_type"`
	Gearbox     Gearbox         `json:"gearbox" db:"gearbox"`
	Color       string          `json:"color,omitempty" db:"color"`
	Description string          `json:"description,omitempty" db:"description"`
	Options     []string        `json:"options,omitempty" db:"options"`
	QRCode      string          `json:"qrCode,omitempty" db:"qr_code"`
	Status      VehicleStatus   `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// VehicleSummary is the projection of a vehicle attached to orders,
// promotions and scan responses.
type VehicleSummary struct {
	ID    uuid.UUID       `json:"id"`
	Make  string          `json:"make"`
	Model string          `json:"model"`
	Year  int             `json:"year"`
	Price decimal.Decimal `json:"price"`
}

// Summary returns the display projection of the vehicle.
func (v *Vehicle) Summary() VehicleSummary {
	return VehicleSummary{
		ID:    v.ID,
		Make:  v.Make,
		Model: v.Model,
		Year:  v.Year,
		Price: v.Price,
	}
}

// VehicleRequest is the payload for creating or updating a vehicle.
type VehicleRequest struct {
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        int             `json:"year"`
	Price       decimal.Decimal `json:"price"`
	Mileage     int             `json:"mileage"`
	FuelType    FuelType        `json:"fuelType"`
	Gearbox     Gearbox         `json:"gearbox"`
	Color       string          `json:"color"`
	Description string          `json:"description"`
	Options     []string        `json:"options"`
}

// VehicleFilter narrows vehicle list queries.
type VehicleFilter struct {
	Status   VehicleStatus
	Make     string
	FuelType FuelType
	MaxPrice *decimal.Decimal
}

// VehicleStats aggregates inventory counts for the dashboard.
type VehicleStats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Reserved    int64 `json:"reserved"`
	Sold        int64 `json:"sold"`
	Maintenance int64 `json:"maintenance"`
	Unavailable int64 `json:"unavailable"`
}
