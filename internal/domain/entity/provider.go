package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SubscriptionStatus values
const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

const (
	SubscriptionPlanMonthly = "monthly"
	trialPeriodMonths       = 3
)

// SubscriptionPrice is the monthly price after the trial ends.
var SubscriptionPrice = decimal.NewFromInt(20)

// Provider is the business profile owned by a provider user
type Provider struct {
	ID                      uuid.UUID                                           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID                  uuid.UUID                                           `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BusinessName            string                                              `gorm:"type:varchar(255);not null" json:"business_name"`
	FirstName               string                                              `gorm:"type:varchar(100)" json:"first_name"`
	LastName                string                                              `gorm:"type:varchar(100)" json:"last_name"`
	Description             string                                              `gorm:"type:text" json:"description,omitempty"`
	Address                 Address                                             `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Country                 string                                              `gorm:"type:varchar(100);default:'USA'" json:"country"`
	Location                Coordinates                                         `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	ContactInfo             ContactInfo                                         `gorm:"embedded;embeddedPrefix:contact_" json:"contact_info"`
	ServiceCategories       datatypes.JSONType[ServiceCategorySelection]        `gorm:"type:jsonb;not null" json:"service_categories"`
	Availability            datatypes.JSONType[WeeklyAvailability]              `gorm:"type:jsonb;not null" json:"availability"`
	NotificationPreferences datatypes.JSONType[ProviderNotificationPreferences] `gorm:"type:jsonb;not null" json:"notification_preferences"`
	Subscription            Subscription                                        `gorm:"embedded;embeddedPrefix:subscription_" json:"subscription"`
	Rating                  float64                                             `gorm:"not null;default:0" json:"rating"`
	ReviewCount             int64                                               `gorm:"not null;default:0" json:"review_count"`
	CompletedServices       int64                                               `gorm:"not null;default:0" json:"completed_services"`
	TotalEarnings           decimal.Decimal                                     `gorm:"type:decimal(12,2);not null;default:0" json:"total_earnings"`
	AcceptanceRate          float64                                             `gorm:"not null;default:0" json:"acceptance_rate"`
	IsVerified              bool                                                `gorm:"not null;default:false" json:"is_verified"`
	IsAdultServiceProvider  bool                                                `gorm:"not null;default:false;index" json:"is_adult_service_provider"`
	CreatedAt               time.Time                                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time                                           `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User     User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Services []Service        `gorm:"foreignKey:ProviderID" json:"services,omitempty"`
	Reviews  []ProviderReview `gorm:"foreignKey:ProviderID" json:"reviews,omitempty"`
}

func (Provider) TableName() string {
	return "providers"
}

type ContactInfo struct {
	Phone   string `gorm:"type:varchar(30)" json:"phone"`
	Email   string `gorm:"type:varchar(255)" json:"email"`
	Website string `gorm:"type:varchar(255)" json:"website"`
}

type Subscription struct {
	Status         string          `gorm:"type:varchar(20);not null;default:'trial'" json:"status"`
	TrialStartDate *time.Time      `json:"trial_start_date,omitempty"`
	TrialEndDate   *time.Time      `json:"trial_end_date,omitempty"`
	Plan           string          `gorm:"type:varchar(20);not null;default:'monthly'" json:"plan"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:20" json:"price"`
}

// NewTrialSubscription starts a trial at now.
func NewTrialSubscription(now time.Time) Subscription {
	end := now.AddDate(0, trialPeriodMonths, 0)
	return Subscription{
		Status:         SubscriptionTrial,
		TrialStartDate: &now,
		TrialEndDate:   &end,
		Plan:           SubscriptionPlanMonthly,
		Price:          SubscriptionPrice,
	}
}

// DaysRemaining returns the whole days left in a trial, rounded up.
func (s Subscription) DaysRemaining(now time.Time) int {
	if s.Status != SubscriptionTrial || s.TrialEndDate == nil {
		return 0
	}
	remaining := s.TrialEndDate.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// ServiceCategorySelection maps category group -> category -> offered.
type ServiceCategorySelection map[CategoryGroup]map[Category]bool

// OffersAdultServices reports whether any adult-only category is selected.
func (s ServiceCategorySelection) OffersAdultServices() bool {
	for _, offered := range s[CategoryGroupAdultOnlyMassage] {
		if offered {
			return true
		}
	}
	return false
}

// DefaultServiceCategories returns an empty selection for every group.
func DefaultServiceCategories() ServiceCategorySelection {
	selection := ServiceCategorySelection{}
	for _, group := range CategoryGroups() {
		if group == CategoryGroupOther {
			continue
		}
		selection[group] = map[Category]bool{}
	}
	return selection
}

type DayAvailability struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	IsAvailable bool   `json:"isAvailable"`
}

// WeeklyAvailability is keyed by lowercase weekday name.
type WeeklyAvailability map[string]DayAvailability

// Weekdays lists the keys accepted in WeeklyAvailability.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// IsWeekday reports whether day is a valid WeeklyAvailability key.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

func DefaultWeeklyAvailability() WeeklyAvailability {
	weekday := DayAvailability{Start: "09:00", End: "17:00", IsAvailable: true}
	return WeeklyAvailability{
		"monday":    weekday,
		"tuesday":   weekday,
		"wednesday": weekday,
		"thursday":  weekday,
		"friday":    weekday,
		"saturday":  {Start: "10:00", End: "15:00", IsAvailable: true},
		"sunday":    {Start: "00:00", End: "00:00", IsAvailable: false},
	}
}

type ProviderNotificationPreferences struct {
	SMS   ProviderSMSPreferences   `json:"sms"`
	Email ProviderEmailPreferences `json:"email"`
}

type ProviderSMSPreferences struct {
	Enabled              bool       `json:"enabled"`
	PhoneNumber          string     `json:"phoneNumber"`
	NewRequests          bool       `json:"newRequests"`
	RequestReminders     bool       `json:"requestReminders"`
	AppointmentReminders bool       `json:"appointmentReminders"`
	ClientCancellations  bool       `json:"clientCancellations"`
	NewReviews           bool       `json:"newReviews"`
	PaymentNotifications bool       `json:"paymentNotifications"`
	QuietHours           QuietHours `json:"quietHours"`
}

type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type ProviderEmailPreferences struct {
	Enabled          bool   `json:"enabled"`
	Address          string `json:"address"`
	NewRequests      bool   `json:"newRequests"`
	NewReviews       bool   `json:"newReviews"`
	DailySummary     bool   `json:"dailySummary"`
	WeeklyReport     bool   `json:"weeklyReport"`
	MarketingUpdates bool   `json:"marketingUpdates"`
}

// DefaultProviderNotificationPreferences enables request and cancellation alerts on both channels.
func DefaultProviderNotificationPreferences(phone, email string) ProviderNotificationPreferences {
	return ProviderNotificationPreferences{
		SMS: ProviderSMSPreferences{
			Enabled:              true,
			PhoneNumber:          phone,
			NewRequests:          true,
			RequestReminders:     true,
			AppointmentReminders: true,
			ClientCancellations:  true,
			QuietHours:           QuietHours{Start: "22:00", End: "08:00"},
		},
		Email: ProviderEmailPreferences{
			Enabled:      true,
			Address:      email,
			NewRequests:  true,
			DailySummary: true,
			WeeklyReport: true,
		},
	}
}

// ProviderFilter is a domain-level filter for provider search.
type ProviderFilter struct {
	Category      Category
	CategoryGroup CategoryGroup
	AdultOnly     *bool
	Day           string
}
