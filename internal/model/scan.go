package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanResult is the outcome of a QR lookup.
type ScanResult string

const (
	ScanSuccess ScanResult = "Success"
	ScanFailed  ScanResult = "Failed"
)

// Scan records one QR-code lookup of a vehicle.
type Scan struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	VehicleID uuid.UUID  `json:"vehicleId" db:"vehicle_id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	IP        string     `json:"ip" db:"ip"`
	UserAgent string     `json:"userAgent,omitempty" db:"user_agent"`
	Result    ScanResult `json:"result" db:"result"`
	Details   string     `json:"details,omitempty" db:"details"`
	ScannedAt time.Time  `json:"scannedAt" db:"scanned_at"`
}

// ScanRequest is the payload for recording a scan.
type ScanRequest struct {
	VehicleID uuid.UUID `json:"vehicleId"`
	UserID    uuid.UUID `json:"userId"`
}

// ScanResponse is a scan with its display projections attached.
type ScanResponse struct {
	Scan
	Vehicle *VehicleSummary `json:"vehicle,omitempty"`
	User    *UserSummary    `json:"user,omitempty"`
}

// ScanStats aggregates scan counters per vehicle.
type ScanStats struct {
	Total      int64     `json:"total"`
	Last7Days  int64     `json:"last7Days"`
	Last30Days int64     `json:"last30Days"`
	VehicleID  uuid.UUID `json:"vehicleId"`
}
