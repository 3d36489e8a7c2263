package dto

import (
	"time"

	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type TimeSlotRequest struct {
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

type ServiceDayRequest struct {
	Available bool              `json:"available"`
	Slots     []TimeSlotRequest `json:"slots" validate:"omitempty,dive"`
}

type CreateServiceRequest struct {
	Name                  string                       `json:"name" validate:"required,min=2,max=255"`
	Description           string                       `json:"description" validate:"omitempty,max=2000"`
	Duration              int                          `json:"duration" validate:"required,min=5"`
	Price                 decimal.Decimal              `json:"price"`
	Category              string                       `json:"category" validate:"required"`
	AcceptsUrgentRequests *bool                        `json:"acceptsUrgentRequests"`
	MaxTravelDistance     *float64                     `json:"maxTravelDistance" validate:"omitempty,gte=0"`
	Availability          map[string]ServiceDayRequest `json:"availability" validate:"omitempty,dive"`
}

type UpdateServiceRequest struct {
	Name                  *string                      `json:"name" validate:"omitempty,min=2,max=255"`
	Description           *string                      `json:"description" validate:"omitempty,max=2000"`
	Duration              *int                         `json:"duration" validate:"omitempty,min=5"`
	Price                 *decimal.Decimal             `json:"price"`
	Category              *string                      `json:"category"`
	AcceptsUrgentRequests *bool                        `json:"acceptsUrgentRequests"`
	MaxTravelDistance     *float64                     `json:"maxTravelDistance" validate:"omitempty,gte=0"`
	Availability          map[string]ServiceDayRequest `json:"availability" validate:"omitempty,dive"`
	IsActive              *bool                        `json:"isActive"`
}

// ServiceListRequest is parsed from the query string.
type ServiceListRequest struct {
	Category      string
	CategoryGroup string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinDuration   *int
	MaxDuration   *int
	AdultOnly     *bool
	Page          int
	Limit         int
}

// Response DTOs

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type ServiceResponse struct {
	ID                      uuid.UUID                  `json:"id"`
	ProviderID              uuid.UUID                  `json:"provider"`
	Provider                *ProviderSummary           `json:"providerDetails,omitempty"`
	Name                    string                     `json:"name"`
	Description             string                     `json:"description,omitempty"`
	Duration                int                        `json:"duration"`
	Price                   decimal.Decimal            `json:"price"`
	Category                entity.Category            `json:"category"`
	CategoryGroup           entity.CategoryGroup       `json:"categoryGroup"`
	IsAdultOnly             bool                       `json:"isAdultOnly"`
	RequiresAgeVerification bool                       `json:"requiresAgeVerification"`
	AcceptsUrgentRequests   bool                       `json:"acceptsUrgentRequests"`
	MaxTravelDistance       float64                    `json:"maxTravelDistance"`
	PriceRange              PriceRange                 `json:"priceRange"`
	Availability            entity.ServiceAvailability `json:"availability"`
	IsActive                bool                       `json:"isActive"`
	CreatedAt               time.Time                  `json:"createdAt"`
	UpdatedAt               time.Time                  `json:"updatedAt"`
}
