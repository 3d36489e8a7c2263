package repository

import (
	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	Create(db *gorm.DB, service *entity.Service) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error)
	FindByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.Service, error)
	FindAll(db *gorm.DB, filter entity.ServiceFilter) ([]entity.Service, int64, error)
	Update(db *gorm.DB, service *entity.Service) error
	Delete(db *gorm.DB, id uuid.UUID) error
}
