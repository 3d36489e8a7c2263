package service

import (
	"context"
	"encoding/json"
	"fmt"

	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditService records audit entries inside the caller's transaction,
// so an entry exists exactly when the change it describes was committed.
type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityType string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityType string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityType string, entityID string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityType string, entityID string, newValue interface{}) error {
	return s.write(ctx, tx, newAuditLog(userID, action, entityType, entityID, nil, newValue))
}

func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityType string, entityID string, oldValue, newValue interface{}) error {
	return s.write(ctx, tx, newAuditLog(userID, action, entityType, entityID, oldValue, newValue))
}

func (s *auditService) LogDelete(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityType string, entityID string, oldValue interface{}) error {
	return s.write(ctx, tx, newAuditLog(userID, action, entityType, entityID, oldValue, nil))
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, auditLog *entity.AuditLog) error {
	if err := s.auditRepo.Create(tx.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for %s %s: %+v", auditLog.EntityType, auditLog.EntityID, err)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func newAuditLog(userID *uuid.UUID, action, entityType, entityID string, oldValue, newValue interface{}) *entity.AuditLog {
	metadata := datatypes.JSONMap{}
	if oldValue != nil {
		metadata["old_value"] = snapshot(oldValue)
	}
	if newValue != nil {
		metadata["new_value"] = snapshot(newValue)
	}
	return &entity.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}
}

// snapshot freezes v as JSON so later mutations of the caller's struct
// do not leak into the stored entry.
func snapshot(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}
