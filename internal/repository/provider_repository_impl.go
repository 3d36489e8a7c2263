package repository

import (
	"errors"

	"service-marketplace/internal/domain/entity"
	domainRepo "service-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type providerRepository struct{}

func NewProviderRepository() domainRepo.ProviderRepository {
	return &providerRepository{}
}

func (r *providerRepository) Create(db *gorm.DB, provider *entity.Provider) error {
	return db.Omit("User", "Services", "Reviews").Create(provider).Error
}

func (r *providerRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Provider, error) {
	return r.first(db.Preload("User"), "id = ?", id)
}

// FindDetailByID also loads active services and reviews for the public profile.
func (r *providerRepository) FindDetailByID(db *gorm.DB, id uuid.UUID) (*entity.Provider, error) {
	query := db.
		Preload("User").
		Preload("Services", "is_active = ?", true).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("provider_reviews.created_at DESC")
		}).
		Preload("Reviews.User")
	return r.first(query, "id = ?", id)
}

func (r *providerRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Provider, error) {
	return r.first(db, "user_id = ?", userID)
}

func (r *providerRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Provider, error) {
	return r.first(db.Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *providerRepository) first(query *gorm.DB, cond string, arg interface{}) (*entity.Provider, error) {
	var provider entity.Provider
	err := query.Where(cond, arg).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

// FindAll applies the JSONB category and availability filters in the database.
// Distance filtering is left to the caller since it needs the search origin.
func (r *providerRepository) FindAll(db *gorm.DB, filter entity.ProviderFilter) ([]entity.Provider, error) {
	query := db.Model(&entity.Provider{}).Preload("User")

	if filter.Category != "" {
		group := filter.CategoryGroup
		if group == "" {
			group, _ = entity.CategoryGroupOf(filter.Category)
		}
		query = query.Where(datatypes.JSONQuery("service_categories").Equals(true, string(group), string(filter.Category)))
	}
	if filter.AdultOnly != nil {
		query = query.Where("is_adult_service_provider = ?", *filter.AdultOnly)
	}
	if filter.Day != "" {
		query = query.Where(datatypes.JSONQuery("availability").Equals(true, filter.Day, "isAvailable"))
	}

	var providers []entity.Provider
	err := query.Order("rating DESC, created_at DESC").Find(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *providerRepository) Update(db *gorm.DB, provider *entity.Provider) error {
	return db.Omit("User", "Services", "Reviews").Save(provider).Error
}

func (r *providerRepository) IncrementCompletionStats(db *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	result := db.Model(&entity.Provider{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"completed_services": gorm.Expr("completed_services + ?", 1),
			"total_earnings":     gorm.Expr("total_earnings + ?", amount),
		})
	return result.RowsAffected, result.Error
}

func (r *providerRepository) CreateReview(db *gorm.DB, review *entity.ProviderReview) error {
	return db.Omit("User").Create(review).Error
}

func (r *providerRepository) HasReviewFrom(db *gorm.DB, providerID, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&entity.ProviderReview{}).
		Where("provider_id = ? AND user_id = ?", providerID, userID).
		Count(&count).Error
	return count > 0, err
}

// UpdateRating recomputes rating and review count from provider_reviews.
// Callers hold the provider row lock from FindByIDForUpdate.
func (r *providerRepository) UpdateRating(db *gorm.DB, id uuid.UUID) error {
	var agg struct {
		Average float64
		Count   int64
	}
	err := db.Model(&entity.ProviderReview{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("provider_id = ?", id).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return db.Model(&entity.Provider{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"rating":       agg.Average,
			"review_count": agg.Count,
		}).Error
}
