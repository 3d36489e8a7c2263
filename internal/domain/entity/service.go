package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DefaultMaxTravelDistance = 10
	MinServiceDuration       = 5
)

var priceRangeMaxFactor = decimal.NewFromFloat(1.5)

// Service is a bookable offering of a provider
type Service struct {
	ID                      uuid.UUID                               `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProviderID              uuid.UUID                               `gorm:"type:uuid;not null;index" json:"provider_id"`
	Name                    string                                  `gorm:"type:varchar(255);not null" json:"name"`
	Description             string                                  `gorm:"type:text" json:"description,omitempty"`
	Duration                int                                     `gorm:"not null" json:"duration"`
	Price                   decimal.Decimal                         `gorm:"type:decimal(10,2);not null" json:"price"`
	Category                Category                                `gorm:"type:varchar(50);not null;index" json:"category"`
	CategoryGroup           CategoryGroup                           `gorm:"type:varchar(50);not null;index" json:"category_group"`
	IsAdultOnly             bool                                    `gorm:"not null;default:false" json:"is_adult_only"`
	RequiresAgeVerification bool                                    `gorm:"not null;default:false" json:"requires_age_verification"`
	AcceptsUrgentRequests   bool                                    `gorm:"not null;default:true" json:"accepts_urgent_requests"`
	MaxTravelDistance       float64                                 `gorm:"not null;default:10" json:"max_travel_distance"`
	PriceRangeMin           decimal.Decimal                         `gorm:"type:decimal(10,2);not null" json:"price_range_min"`
	PriceRangeMax           decimal.Decimal                         `gorm:"type:decimal(10,2);not null" json:"price_range_max"`
	Availability            datatypes.JSONType[ServiceAvailability] `gorm:"type:jsonb;not null" json:"availability"`
	IsActive                bool                                    `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt               time.Time                               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time                               `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Provider *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

// ApplyCategory sets the category and everything derived from it.
func (s *Service) ApplyCategory(c Category) bool {
	group, ok := CategoryGroupOf(c)
	if !ok {
		return false
	}
	s.Category = c
	s.CategoryGroup = group
	s.IsAdultOnly = c.IsAdultOnly()
	s.RequiresAgeVerification = s.IsAdultOnly
	return true
}

// ApplyPrice sets the price and its derived range.
func (s *Service) ApplyPrice(price decimal.Decimal) {
	s.Price = price
	s.PriceRangeMin = price
	s.PriceRangeMax = price.Mul(priceRangeMaxFactor)
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ServiceDay struct {
	Available bool       `json:"available"`
	Slots     []TimeSlot `json:"slots"`
}

// ServiceAvailability is keyed by lowercase weekday name.
type ServiceAvailability map[string]ServiceDay

func DefaultServiceAvailability() ServiceAvailability {
	weekday := ServiceDay{Available: true, Slots: []TimeSlot{{Start: "09:00", End: "17:00"}}}
	return ServiceAvailability{
		"monday":    weekday,
		"tuesday":   weekday,
		"wednesday": weekday,
		"thursday":  weekday,
		"friday":    weekday,
		"saturday":  {Available: true, Slots: []TimeSlot{{Start: "10:00", End: "15:00"}}},
		"sunday":    {Available: false, Slots: []TimeSlot{}},
	}
}

// ServiceFilter is a domain-level filter for service listings.
type ServiceFilter struct {
	Category      Category
	CategoryGroup CategoryGroup
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinDuration   *int
	MaxDuration   *int
	AdultOnly     *bool
	IsActive      *bool
	Page          int
	Limit         int
}
