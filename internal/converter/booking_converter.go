package converter

import (
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:             booking.ID,
		CustomerID:     booking.CustomerID,
		ProviderID:     booking.ProviderID,
		ServiceID:      booking.ServiceID,
		Customer:       UserToSummary(booking.Customer),
		Provider:       ProviderToSummary(booking.Provider),
		ServiceDetails: booking.ServiceDetails,
		Date:           booking.Date,
		Status:         booking.Status,
		IsUrgent:       booking.IsUrgent,
		RequestedTime:  booking.RequestedTime,
		CustomerLocation: dto.CustomerLocationResponse{
			Address:     booking.CustomerLocation.Address,
			Coordinates: PairFromCoordinates(booking.CustomerLocation.Coordinates),
		},
		ProviderLocation: dto.ProviderLocationResponse{
			Coordinates: PairFromCoordinates(booking.ProviderLocation),
		},
		DistanceToCustomer: booking.DistanceToCustomer,
		Notes:              booking.Notes,
		TotalPrice:         booking.TotalPrice,
		PaymentStatus:      booking.PaymentStatus,
		Notifications: dto.NotificationFlagsResponse{
			CustomerNotified: booking.Notifications.CustomerNotified,
			ProviderNotified: booking.Notifications.ProviderNotified,
			ReminderSent:     booking.Notifications.ReminderSent,
		},
		Feedback: dto.FeedbackResponse{
			CustomerRating: booking.Feedback.CustomerRating,
			CustomerReview: booking.Feedback.CustomerReview,
			ProviderRating: booking.Feedback.ProviderRating,
			ProviderReview: booking.Feedback.ProviderReview,
		},
		Timeline:           make([]dto.TimelineEntryResponse, len(booking.Timeline)),
		CreatedAt:          booking.CreatedAt,
		UpdatedAt:          booking.UpdatedAt,
	}

	for i, entry := range booking.Timeline {
		response.Timeline[i] = dto.TimelineEntryResponse{
			Status:    entry.Status,
			Note:      entry.Note,
			Timestamp: entry.Timestamp,
		}
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}
