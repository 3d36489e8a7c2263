package repository

import (
	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProviderRepository interface {
	Create(db *gorm.DB, provider *entity.Provider) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Provider, error)
	FindDetailByID(db *gorm.DB, id uuid.UUID) (*entity.Provider, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Provider, error)
	FindAll(db *gorm.DB, filter entity.ProviderFilter) ([]entity.Provider, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Provider, error)
	Update(db *gorm.DB, provider *entity.Provider) error
	// IncrementCompletionStats adds one completed service and amount earnings in place.
	IncrementCompletionStats(db *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error)
	CreateReview(db *gorm.DB, review *entity.ProviderReview) error
	HasReviewFrom(db *gorm.DB, providerID, userID uuid.UUID) (bool, error)
	UpdateRating(db *gorm.DB, id uuid.UUID) error
}
