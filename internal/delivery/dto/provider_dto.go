package dto

import (
	"encoding/json"
	"time"

	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type ContactInfoRequest struct {
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
	Website string `json:"website" validate:"omitempty,url"`
}

type DayAvailabilityRequest struct {
	Start       string `json:"start" validate:"required,hhmm"`
	End         string `json:"end" validate:"required,hhmm"`
	IsAvailable bool   `json:"isAvailable"`
}

type CreateProviderRequest struct {
	BusinessName      string                            `json:"businessName" validate:"required,min=2,max=255"`
	FirstName         string                            `json:"firstName" validate:"omitempty,max=100"`
	LastName          string                            `json:"lastName" validate:"omitempty,max=100"`
	Description       string                            `json:"description" validate:"omitempty,max=2000"`
	Address           *AddressRequest                   `json:"address" validate:"omitempty"`
	ContactInfo       *ContactInfoRequest               `json:"contactInfo" validate:"omitempty"`
	ServiceCategories entity.ServiceCategorySelection   `json:"serviceCategories"`
	Availability      map[string]DayAvailabilityRequest `json:"availability" validate:"omitempty,dive"`
}

// UpdateProviderRequest leaves a field unchanged when it is absent.
// ServiceCategories is merged group by group into the stored selection.
type UpdateProviderRequest struct {
	BusinessName      *string                           `json:"businessName" validate:"omitempty,min=2,max=255"`
	FirstName         *string                           `json:"firstName" validate:"omitempty,max=100"`
	LastName          *string                           `json:"lastName" validate:"omitempty,max=100"`
	Description       *string                           `json:"description" validate:"omitempty,max=2000"`
	Address           *AddressRequest                   `json:"address" validate:"omitempty"`
	ContactInfo       *ContactInfoRequest               `json:"contactInfo" validate:"omitempty"`
	ServiceCategories entity.ServiceCategorySelection   `json:"serviceCategories"`
	Availability      map[string]DayAvailabilityRequest `json:"availability" validate:"omitempty,dive"`
}

type UpdateProviderNotificationsRequest struct {
	SMS   json.RawMessage `json:"sms"`
	Email json.RawMessage `json:"email"`
}

type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"omitempty,max=2000"`
}

// ProviderListRequest is parsed from the query string. Distance is in kilometers.
type ProviderListRequest struct {
	Category      string
	CategoryGroup string
	AdultOnly     *bool
	Latitude      *float64
	Longitude     *float64
	Distance      *float64
	Day           string
	Page          int
	Limit         int
}

// Response DTOs

type ReviewResponse struct {
	ID        int64        `json:"id"`
	User      *UserSummary `json:"user,omitempty"`
	Rating    int          `json:"rating"`
	Text      string       `json:"text,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

type ProviderStatsResponse struct {
	CompletedServices int64           `json:"completedServices"`
	TotalEarnings     decimal.Decimal `json:"totalEarnings"`
	AcceptanceRate    float64         `json:"acceptanceRate"`
}

type ProviderResponse struct {
	ID                      uuid.UUID                               `json:"id"`
	UserID                  uuid.UUID                               `json:"user"`
	BusinessName            string                                  `json:"businessName"`
	FirstName               string                                  `json:"firstName"`
	LastName                string                                  `json:"lastName"`
	Description             string                                  `json:"description,omitempty"`
	Address                 entity.Address                          `json:"address"`
	Country                 string                                  `json:"country"`
	Coordinates             []float64                               `json:"coordinates,omitempty"`
	ContactInfo             entity.ContactInfo                      `json:"contactInfo"`
	ServiceCategories       entity.ServiceCategorySelection         `json:"serviceCategories"`
	Availability            entity.WeeklyAvailability               `json:"availability"`
	NotificationPreferences *entity.ProviderNotificationPreferences `json:"notificationPreferences,omitempty"`
	Subscription            *SubscriptionResponse                   `json:"subscription,omitempty"`
	Rating                  float64                                 `json:"rating"`
	ReviewCount             int64                                   `json:"reviewCount"`
	Reviews                 []ReviewResponse                        `json:"reviews,omitempty"`
	Services                []ServiceResponse                       `json:"services,omitempty"`
	Stats                   ProviderStatsResponse                   `json:"stats"`
	IsVerified              bool                                    `json:"isVerified"`
	IsAdultServiceProvider  bool                                    `json:"isAdultServiceProvider"`
	Distance                *float64                                `json:"distance,omitempty"`
	CreatedAt               time.Time                               `json:"createdAt"`
}

// ProviderSummary is the embedded form of a provider inside bookings.
type ProviderSummary struct {
	ID           uuid.UUID          `json:"id"`
	UserID       uuid.UUID          `json:"user"`
	BusinessName string             `json:"businessName"`
	Address      entity.Address     `json:"address"`
	ContactInfo  entity.ContactInfo `json:"contactInfo"`
}

type SubscriptionResponse struct {
	Status         string          `json:"status"`
	TrialStartDate *time.Time      `json:"trialStartDate,omitempty"`
	TrialEndDate   *time.Time      `json:"trialEndDate,omitempty"`
	Plan           string          `json:"plan"`
	Price          decimal.Decimal `json:"price"`
	DaysRemaining  int             `json:"daysRemaining"`
}

// ProviderDashboardStats is the provider's own activity summary.
type ProviderDashboardStats struct {
	CompletedServices int64           `json:"completedServices"`
	PendingRequests   int64           `json:"pendingRequests"`
	MonthlyEarnings   decimal.Decimal `json:"monthlyEarnings"`
	Rating            float64         `json:"rating"`
	ReviewCount       int64           `json:"reviewCount"`
}

// ProviderOnboardingResponse is returned when a customer becomes a provider.
// The tokens carry the new role.
type ProviderOnboardingResponse struct {
	Provider *ProviderResponse `json:"provider"`
	Auth     *AuthResponse     `json:"auth"`
}
