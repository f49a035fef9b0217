package model

import (
	"time"

	"github.com/google/uuid"
)

// ComplaintStatus is the handling state of a customer complaint.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "Pending"
	ComplaintInProgress ComplaintStatus = "InProgress"
	ComplaintResolved   ComplaintStatus = "Resolved"
)

// ValidComplaintStatus reports whether s is one of the enumerated statuses.
func ValidComplaintStatus(s ComplaintStatus) bool {
	switch s {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved:
		return true
	}
	return false
}

// Complaint is a customer complaint ticket.
type Complaint struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Subject   string          `json:"subject" db:"subject"`
	Message   string          `json:"message" db:"message"`
	Status    ComplaintStatus `json:"status" db:"status"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// ComplaintRequest is the payload for creating or updating a complaint.
type ComplaintRequest struct {
	Subject string          `json:"subject"`
	Message string          `json:"message"`
	Status  ComplaintStatus `json:"status,omitempty"`
}
