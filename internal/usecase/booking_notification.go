package usecase

import (
	"time"

	"service-marketplace/internal/authz"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/service"

	"github.com/google/uuid"
)

// Notification sending is best-effort: failures are logged and never change
// the outcome of the request that triggered them.

func (u *bookingUsecase) notifyNewRequest(booking *entity.Booking, provider *entity.Provider) {
	prefs := provider.NotificationPreferences.Data()
	sent := false

	if prefs.SMS.Enabled && prefs.SMS.NewRequests {
		sent = u.dispatch(booking, provider.ID, service.RecipientProvider, service.ChannelSMS, service.EventBookingRequested, "") || sent
	}
	if prefs.Email.Enabled && prefs.Email.NewRequests {
		sent = u.dispatch(booking, provider.ID, service.RecipientProvider, service.ChannelEmail, service.EventBookingRequested, "") || sent
	}

	if sent {
		u.markProviderNotified(booking)
	}
}

func (u *bookingUsecase) notifyTransition(booking *entity.Booking, actor authz.Actor, t transition) {
	if t.to != entity.BookingStatusCancelled {
		u.notifyCustomer(booking, t.event, t.note)
		return
	}

	switch actor.RoleID {
	case entity.RoleIDCustomer:
		u.notifyProviderOfCancellation(booking, t)
	case entity.RoleIDProvider:
		u.notifyCustomer(booking, t.event, t.note)
	default:
		u.notifyCustomer(booking, t.event, t.note)
		u.notifyProviderOfCancellation(booking, t)
	}
}

func (u *bookingUsecase) notifyCustomer(booking *entity.Booking, event service.NotificationEvent, note string) {
	if booking.Customer == nil {
		return
	}
	prefs := booking.Customer.Preferences.Data().NotificationPreferences
	if !prefs.SMS.Enabled {
		return
	}
	if u.dispatch(booking, booking.CustomerID, service.RecipientCustomer, service.ChannelSMS, event, note) {
		u.markCustomerNotified(booking)
	}
}

func (u *bookingUsecase) notifyProviderOfCancellation(booking *entity.Booking, t transition) {
	if booking.Provider == nil {
		return
	}
	prefs := booking.Provider.NotificationPreferences.Data()
	if !prefs.SMS.Enabled || !prefs.SMS.ClientCancellations {
		return
	}
	if u.dispatch(booking, booking.ProviderID, service.RecipientProvider, service.ChannelSMS, t.event, t.note) {
		u.markProviderNotified(booking)
	}
}

// dispatch reports whether the notifier accepted the notification.
func (u *bookingUsecase) dispatch(booking *entity.Booking, recipientID uuid.UUID, recipientType string, channel service.NotificationChannel, event service.NotificationEvent, note string) bool {
	payload := map[string]interface{}{
		"status":      booking.Status,
		"serviceName": booking.ServiceDetails.Name,
		"date":        booking.Date,
		"isUrgent":    booking.IsUrgent,
	}
	if note != "" {
		payload["note"] = note
	}

	n := service.Notification{
		ID:            uuid.New(),
		RecipientID:   recipientID,
		RecipientType: recipientType,
		Channel:       channel,
		Event:         event,
		BookingID:     booking.ID,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}

	if err := u.notifier.Dispatch(n); err != nil {
		u.log.Warnf("Failed to dispatch %s notification for booking %s: %+v", event, booking.ID, err)
		return false
	}
	return true
}

func (u *bookingUsecase) markCustomerNotified(booking *entity.Booking) {
	if err := u.bookingRepo.MarkCustomerNotified(u.db, booking.ID); err != nil {
		u.log.Warnf("Failed to flag customer notification for booking %s: %+v", booking.ID, err)
		return
	}
	booking.Notifications.CustomerNotified = true
}

func (u *bookingUsecase) markProviderNotified(booking *entity.Booking) {
	if err := u.bookingRepo.MarkProviderNotified(u.db, booking.ID); err != nil {
		u.log.Warnf("Failed to flag provider notification for booking %s: %+v", booking.ID, err)
		return
	}
	booking.Notifications.ProviderNotified = true
}
