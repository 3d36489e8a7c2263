package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLogListRequest struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
	Page       int
	Limit      int
}

// Response DTOs

type AuditLogResponse struct {
	ID         int64             `json:"id"`
	UserID     *uuid.UUID        `json:"userId,omitempty"`
	User       *UserSummary      `json:"user,omitempty"`
	Action     string            `json:"action"`
	EntityType string            `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Metadata   datatypes.JSONMap `json:"metadata"`
	CreatedAt  time.Time         `json:"createdAt"`
}
