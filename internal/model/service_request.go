package model

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRequest status enum constants
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

// Timeline event labels. Every request gets exactly one REQUESTED entry at
// creation and at most one terminal entry when it is decided.
const (
	EventRequested = "REQUESTED"
	EventApproved  = "APPROVED"
	EventRejected  = "REJECTED"
)

// ServiceRequest tracks a user's request for a catalog service through the
// PENDING -> APPROVED/REJECTED lifecycle. ApprovedBy and ApprovedAt are nil
// exactly while the request is PENDING; once decided the record never
// changes again.
type ServiceRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ServiceID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"service_id"`
	Service     *Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Details     string     `gorm:"type:text" json:"details"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver    *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TimelineEntry is one append-only audit record of a request state
// transition. Entries are never updated or deleted.
type TimelineEntry struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ServiceRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_request_id"`
	ServiceRequest   *ServiceRequest `gorm:"foreignKey:ServiceRequestID" json:"-"`
	Event            string          `gorm:"type:varchar(20);not null" json:"event"`
	Details          string          `gorm:"type:text" json:"details"`
	Timestamp        time.Time       `gorm:"not null;index" json:"timestamp"`
}
