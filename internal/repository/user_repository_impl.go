package repository

import (
	"errors"

	"service-marketplace/internal/domain/entity"
	domainRepo "service-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *entity.User) error {
	return db.Omit("Role", "FavoriteProviders").Create(user).Error
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	var user entity.User
	err := db.Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := db.
		Preload("Role").
		Preload("FavoriteProviders").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, user *entity.User) error {
	return db.Omit("Role", "FavoriteProviders", "Password", "Email", "RoleID").Save(user).Error
}

func (r *userRepository) UpdatePassword(db *gorm.DB, id uuid.UUID, hashedPassword string) error {
	return db.Model(&entity.User{}).Where("id = ?", id).Update("password", hashedPassword).Error
}

func (r *userRepository) UpdateRole(db *gorm.DB, id uuid.UUID, roleID int) error {
	return db.Model(&entity.User{}).Where("id = ?", id).Update("role_id", roleID).Error
}

func (r *userRepository) AddFavoriteProvider(db *gorm.DB, userID, providerID uuid.UUID) error {
	return db.Exec(
		"INSERT INTO user_favorite_providers (user_id, provider_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, providerID,
	).Error
}

func (r *userRepository) RemoveFavoriteProvider(db *gorm.DB, userID, providerID uuid.UUID) (int64, error) {
	result := db.Exec(
		"DELETE FROM user_favorite_providers WHERE user_id = ? AND provider_id = ?",
		userID, providerID,
	)
	return result.RowsAffected, result.Error
}

func (r *userRepository) HasFavoriteProvider(db *gorm.DB, userID, providerID uuid.UUID) (bool, error) {
	var count int64
	err := db.Table("user_favorite_providers").
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		Count(&count).Error
	return count > 0, err
}
