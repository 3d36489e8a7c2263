package repository

import (
	"time"

	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByCustomerID(db *gorm.DB, customerID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, int64, error)
	FindByProviderID(db *gorm.DB, providerID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, int64, error)
	FindUrgentByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.Booking, error)
	FindAll(db *gorm.DB) ([]entity.Booking, error)
	// UpdateStatus moves the booking from one status to another only if it is
	// still in from. Returns affected rows: 0 means the status changed underneath.
	UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus) (int64, error)
	AppendTimeline(db *gorm.DB, entry *entity.BookingTimelineEntry) error
	MarkCustomerNotified(db *gorm.DB, id uuid.UUID) error
	MarkProviderNotified(db *gorm.DB, id uuid.UUID) error
	// Delete removes the booking only while its status is one of statuses.
	Delete(db *gorm.DB, id uuid.UUID, statuses []entity.BookingStatus) (int64, error)
	CountByProviderAndStatus(db *gorm.DB, providerID uuid.UUID, status entity.BookingStatus) (int64, error)
	SumCompletedEarningsSince(db *gorm.DB, providerID uuid.UUID, since time.Time) (decimal.Decimal, error)
}
