package dto

import (
	"encoding/json"
	"time"

	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type AddressRequest struct {
	Street  string `json:"street" validate:"omitempty,max=255"`
	City    string `json:"city" validate:"omitempty,max=100"`
	State   string `json:"state" validate:"omitempty,max=100"`
	ZipCode string `json:"zipCode" validate:"omitempty,max=20"`
}

// LocationRequest carries coordinates as [longitude, latitude].
type LocationRequest struct {
	Address     *AddressRequest `json:"address" validate:"omitempty"`
	Coordinates []float64       `json:"coordinates" validate:"omitempty,len=2"`
}

type UpdateProfileRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=2,max=255"`
	FirstName    *string          `json:"firstName" validate:"omitempty,max=100"`
	LastName     *string          `json:"lastName" validate:"omitempty,max=100"`
	Phone        *string          `json:"phone" validate:"omitempty,min=7,max=30"`
	ProfileImage *string          `json:"profileImage" validate:"omitempty,url"`
	Password     *string          `json:"password" validate:"omitempty,min=6"`
	Location     *LocationRequest `json:"location" validate:"omitempty"`
	Preferences  json.RawMessage  `json:"preferences"`
}

// UpdateUserNotificationsRequest merges the given fields into the stored
// notification preferences; fields that are absent keep their value.
type UpdateUserNotificationsRequest struct {
	Preferences struct {
		NotificationPreferences json.RawMessage `json:"notificationPreferences"`
	} `json:"preferences"`
}

// Response DTOs

type UserResponse struct {
	ID                uuid.UUID               `json:"id"`
	Name              string                  `json:"name"`
	FirstName         string                  `json:"firstName"`
	LastName          string                  `json:"lastName"`
	Email             string                  `json:"email"`
	Phone             string                  `json:"phone,omitempty"`
	Role              string                  `json:"role"`
	ProfileImage      string                  `json:"profileImage,omitempty"`
	Location          *entity.Location        `json:"location,omitempty"`
	Preferences       *entity.UserPreferences `json:"preferences,omitempty"`
	FavoriteProviders []uuid.UUID             `json:"favoriteProviders,omitempty"`
	IsVerified        bool                    `json:"isVerified"`
	CreatedAt         time.Time               `json:"createdAt"`
}

// UserSummary is the embedded form of a user inside bookings and reviews.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}
