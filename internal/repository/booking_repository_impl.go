package repository

import (
	"errors"
	"time"

	"service-marketplace/internal/domain/entity"
	domainRepo "service-marketplace/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func orderedTimeline(db *gorm.DB) *gorm.DB {
	return db.Order("booking_timeline_entries.timestamp ASC, booking_timeline_entries.id ASC")
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Omit("Customer", "Provider", "Service", "Timeline").Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.
		Preload("Customer").
		Preload("Provider").
		Preload("Service").
		Preload("Timeline", orderedTimeline).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByCustomerID(db *gorm.DB, customerID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, int64, error) {
	query := applyBookingFilter(db.Model(&entity.Booking{}).Where("customer_id = ?", customerID), filter)
	return r.findPage(query, filter, "Provider")
}

func (r *bookingRepository) FindByProviderID(db *gorm.DB, providerID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, int64, error) {
	query := applyBookingFilter(db.Model(&entity.Booking{}).Where("provider_id = ?", providerID), filter)
	return r.findPage(query, filter, "Customer")
}

func (r *bookingRepository) findPage(query *gorm.DB, filter entity.BookingFilter, counterparty string) ([]entity.Booking, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []entity.Booking
	err := query.
		Preload(counterparty).
		Preload("Service").
		Preload("Timeline", orderedTimeline).
		Order("date DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func applyBookingFilter(query *gorm.DB, filter entity.BookingFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	return query
}

// FindUrgentByProviderID returns pending urgent requests, newest first.
func (r *bookingRepository) FindUrgentByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.
		Preload("Customer").
		Preload("Service").
		Where("provider_id = ? AND status = ? AND is_urgent = ?", providerID, entity.BookingStatusPending, true).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindAll(db *gorm.DB) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.
		Preload("Customer").
		Preload("Provider").
		Preload("Service").
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus atomically moves a booking ONLY if it is still in from.
// Returns affected rows: 1 = success, 0 = a concurrent transition won.
func (r *bookingRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) AppendTimeline(db *gorm.DB, entry *entity.BookingTimelineEntry) error {
	return db.Create(entry).Error
}

func (r *bookingRepository) MarkCustomerNotified(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&entity.Booking{}).Where("id = ?", id).UpdateColumn("customer_notified", true).Error
}

func (r *bookingRepository) MarkProviderNotified(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&entity.Booking{}).Where("id = ?", id).UpdateColumn("provider_notified", true).Error
}

func (r *bookingRepository) Delete(db *gorm.DB, id uuid.UUID, statuses []entity.BookingStatus) (int64, error) {
	// timeline rows go with it through ON DELETE CASCADE
	result := db.Where("id = ? AND status IN ?", id, statuses).Delete(&entity.Booking{})
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) CountByProviderAndStatus(db *gorm.DB, providerID uuid.UUID, status entity.BookingStatus) (int64, error) {
	var count int64
	err := db.Model(&entity.Booking{}).
		Where("provider_id = ? AND status = ?", providerID, status).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) SumCompletedEarningsSince(db *gorm.DB, providerID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.Model(&entity.Booking{}).
		Select("SUM(total_price)").
		Where("provider_id = ? AND status = ? AND date >= ?", providerID, entity.BookingStatusCompleted, since).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
