package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimelineStatusRequested is the status of the entry written at creation.
const TimelineStatusRequested = "requested"

// Booking represents a customer's request for a provider's service
type Booking struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CustomerID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	ProviderID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"provider_id"`
	ServiceID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"service_id"`
	ServiceDetails     ServiceSnapshot   `gorm:"embedded;embeddedPrefix:service_" json:"service_details"`
	Date               time.Time         `gorm:"not null;index" json:"date"`
	Status             BookingStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsUrgent           bool              `gorm:"not null;default:false;index" json:"is_urgent"`
	RequestedTime      RequestedTime     `gorm:"type:varchar(20);not null;default:'ASAP'" json:"requested_time"`
	CustomerLocation   Location          `gorm:"embedded;embeddedPrefix:customer_" json:"customer_location"`
	ProviderLocation   Coordinates       `gorm:"embedded;embeddedPrefix:provider_" json:"provider_location"`
	DistanceToCustomer float64           `gorm:"not null;default:0" json:"distance_to_customer"`
	Notes              string            `gorm:"type:text" json:"notes,omitempty"`
	TotalPrice         decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"total_price"`
	PaymentStatus      PaymentStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Notifications      NotificationFlags `gorm:"embedded" json:"notifications"`
	Feedback           Feedback          `gorm:"embedded;embeddedPrefix:feedback_" json:"feedback"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Customer *User                  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Provider *Provider              `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Service  *Service               `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Timeline []BookingTimelineEntry `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"timeline"`
}

func (Booking) TableName() string {
	return "bookings"
}

// ServiceSnapshot freezes the service fields at creation time.
type ServiceSnapshot struct {
	Name     string          `gorm:"type:varchar(255)" json:"name"`
	Category Category        `gorm:"type:varchar(50)" json:"category"`
	Duration int             `json:"duration"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
}

// SnapshotOf copies the fields a booking keeps from its service.
func SnapshotOf(s *Service) ServiceSnapshot {
	return ServiceSnapshot{
		Name:     s.Name,
		Category: s.Category,
		Duration: s.Duration,
		Price:    s.Price,
	}
}

type NotificationFlags struct {
	CustomerNotified bool `gorm:"not null;default:false" json:"customer_notified"`
	ProviderNotified bool `gorm:"not null;default:false" json:"provider_notified"`
	ReminderSent     bool `gorm:"not null;default:false" json:"reminder_sent"`
}

type Feedback struct {
	CustomerRating *int   `json:"customer_rating,omitempty"`
	CustomerReview string `gorm:"type:text" json:"customer_review,omitempty"`
	ProviderRating *int   `json:"provider_rating,omitempty"`
	ProviderReview string `gorm:"type:text" json:"provider_review,omitempty"`
}

// BookingTimelineEntry is one append-only record of a status change
type BookingTimelineEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	Note      string    `gorm:"type:text" json:"note"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (BookingTimelineEntry) TableName() string {
	return "booking_timeline_entries"
}

// IsCustomer checks whether userID placed the booking
func (b *Booking) IsCustomer(userID uuid.UUID) bool {
	return b.CustomerID == userID
}

// IsForProvider checks whether the booking was made with providerID
func (b *Booking) IsForProvider(providerID uuid.UUID) bool {
	return b.ProviderID == providerID
}
