package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderReview is a customer's rating of a provider, one per customer.
type ProviderReview struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_provider_reviews_provider_user" json:"provider_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_provider_reviews_provider_user" json:"user_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Text       string    `gorm:"type:text" json:"text,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProviderReview) TableName() string {
	return "provider_reviews"
}
