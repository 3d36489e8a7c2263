package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is one committed change to a user, provider, service or booking.
// Metadata carries the old and new views of the entity.
type AuditLog struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string            `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string            `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   string            `gorm:"type:varchar(64);not null" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionUserRegister      = "user.register"
	AuditActionUserUpdate        = "user.update"
	AuditActionProviderCreate    = "provider.create"
	AuditActionProviderUpdate    = "provider.update"
	AuditActionServiceCreate     = "service.create"
	AuditActionServiceUpdate     = "service.update"
	AuditActionServiceDelete     = "service.delete"
	AuditActionBookingCreate     = "booking.create"
	AuditActionBookingTransition = "booking.transition"
	AuditActionBookingDelete     = "booking.delete"
)

const (
	AuditEntityUser     = "user"
	AuditEntityProvider = "provider"
	AuditEntityService  = "service"
	AuditEntityBooking  = "booking"
)

// AuditLogFilter narrows the admin audit listing. Empty fields match everything.
type AuditLogFilter struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
	Page       int
	Limit      int
}
