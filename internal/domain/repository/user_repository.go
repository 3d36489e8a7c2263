package repository

import (
	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	Update(db *gorm.DB, user *entity.User) error
	UpdatePassword(db *gorm.DB, id uuid.UUID, hashedPassword string) error
	UpdateRole(db *gorm.DB, id uuid.UUID, roleID int) error
	AddFavoriteProvider(db *gorm.DB, userID, providerID uuid.UUID) error
	RemoveFavoriteProvider(db *gorm.DB, userID, providerID uuid.UUID) (int64, error)
	HasFavoriteProvider(db *gorm.DB, userID, providerID uuid.UUID) (bool, error)
}
