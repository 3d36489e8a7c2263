package dto

import (
	"time"

	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	ProviderID       string           `json:"providerId" validate:"required,uuid"`
	ServiceID        string           `json:"serviceId" validate:"required,uuid"`
	Date             *time.Time       `json:"date"`
	CustomerLocation *LocationRequest `json:"customerLocation" validate:"omitempty"`
	Notes            string           `json:"notes" validate:"omitempty,max=2000"`
	IsUrgent         bool             `json:"isUrgent"`
	RequestedTime    string           `json:"requestedTime" validate:"omitempty,oneof=ASAP Today Tomorrow 'This Week' Custom"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// BookingListRequest is parsed from the query string. Dates are YYYY-MM-DD
// or RFC 3339.
type BookingListRequest struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Response DTOs

type NotificationFlagsResponse struct {
	CustomerNotified bool `json:"customerNotified"`
	ProviderNotified bool `json:"providerNotified"`
	ReminderSent     bool `json:"reminderSent"`
}

type FeedbackResponse struct {
	CustomerRating *int   `json:"customerRating,omitempty"`
	CustomerReview string `json:"customerReview,omitempty"`
	ProviderRating *int   `json:"providerRating,omitempty"`
	ProviderReview string `json:"providerReview,omitempty"`
}

type TimelineEntryResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

type CustomerLocationResponse struct {
	Address     entity.Address `json:"address"`
	Coordinates []float64      `json:"coordinates,omitempty"`
}

type ProviderLocationResponse struct {
	Coordinates []float64 `json:"coordinates,omitempty"`
}

type BookingResponse struct {
	ID                 uuid.UUID                `json:"id"`
	CustomerID         uuid.UUID                `json:"customer"`
	ProviderID         uuid.UUID                `json:"provider"`
	ServiceID          uuid.UUID                `json:"service"`
	Customer           *UserSummary             `json:"customerDetails,omitempty"`
	Provider           *ProviderSummary         `json:"providerDetails,omitempty"`
	ServiceDetails     entity.ServiceSnapshot   `json:"serviceDetails"`
	Date               time.Time                `json:"date"`
	Status             entity.BookingStatus     `json:"status"`
	IsUrgent           bool                     `json:"isUrgent"`
	RequestedTime      entity.RequestedTime     `json:"requestedTime"`
	CustomerLocation   CustomerLocationResponse `json:"customerLocation"`
	ProviderLocation   ProviderLocationResponse `json:"providerLocation"`
	DistanceToCustomer float64                  `json:"distanceToCustomer"`
	Notes              string                   `json:"notes,omitempty"`
	TotalPrice         decimal.Decimal          `json:"totalPrice"`
	PaymentStatus      entity.PaymentStatus     `json:"paymentStatus"`
	Notifications      NotificationFlagsResponse `json:"notifications"`
	Feedback           FeedbackResponse          `json:"feedback"`
	Timeline           []TimelineEntryResponse  `json:"timeline"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
}
