package converter

import (
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"

	"gorm.io/datatypes"
)

func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:         log.ID,
		UserID:     log.UserID,
		User:       UserToSummary(log.User),
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Metadata:   auditMetadata(log.Metadata),
		CreatedAt:  log.CreatedAt,
	}
}

// auditMetadata keeps the response shape stable for entries written without values.
func auditMetadata(m datatypes.JSONMap) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return m
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
