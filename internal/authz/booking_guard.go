package authz

import (
	"service-marketplace/internal/domain/entity"
	"service-marketplace/pkg/apperror"

	"github.com/google/uuid"
)

// Actor is the authenticated caller. ProviderID is set only when the
// caller owns a provider profile.
type Actor struct {
	UserID     uuid.UUID
	RoleID     int
	ProviderID *uuid.UUID
}

func (a Actor) Role() string {
	return entity.RoleNameByID(a.RoleID)
}

type Operation string

const (
	OpView         Operation = "view"
	OpUpdateStatus Operation = "update"
	OpAccept       Operation = "accept"
	OpDecline      Operation = "decline"
	OpComplete     Operation = "complete"
	OpCancel       Operation = "cancel"
	OpDelete       Operation = "delete"
)

// policy decides what one role may do to a booking.
type policy interface {
	allows(actor Actor, booking *entity.Booking, op Operation) bool
	// settable reports whether the role may request status via the generic update.
	settable(status entity.BookingStatus) bool
}

type customerPolicy struct{}

func (customerPolicy) allows(actor Actor, booking *entity.Booking, op Operation) bool {
	switch op {
	case OpView, OpUpdateStatus, OpCancel, OpDelete:
		return booking.IsCustomer(actor.UserID)
	}
	return false
}

func (customerPolicy) settable(status entity.BookingStatus) bool {
	return status == entity.BookingStatusCancelled
}

type providerPolicy struct{}

func (providerPolicy) allows(actor Actor, booking *entity.Booking, op Operation) bool {
	switch op {
	case OpView, OpUpdateStatus, OpAccept, OpDecline, OpComplete, OpCancel:
		return actor.ProviderID != nil && booking.IsForProvider(*actor.ProviderID)
	}
	return false
}

func (providerPolicy) settable(status entity.BookingStatus) bool {
	switch status {
	case entity.BookingStatusAccepted,
		entity.BookingStatusDeclined,
		entity.BookingStatusCompleted,
		entity.BookingStatusCancelled,
		entity.BookingStatusNoShow:
		return true
	}
	return false
}

// adminPolicy does not act on behalf of a provider.
type adminPolicy struct{}

func (adminPolicy) allows(_ Actor, _ *entity.Booking, op Operation) bool {
	switch op {
	case OpView, OpUpdateStatus, OpCancel, OpDelete:
		return true
	}
	return false
}

func (adminPolicy) settable(entity.BookingStatus) bool {
	return true
}

var policies = map[int]policy{
	entity.RoleIDCustomer: customerPolicy{},
	entity.RoleIDProvider: providerPolicy{},
	entity.RoleIDAdmin:    adminPolicy{},
}

// BookingGuard evaluates booking access per role. Anything a role's policy
// does not grant is denied, and unknown roles are denied everything.
type BookingGuard struct{}

func NewBookingGuard() *BookingGuard {
	return &BookingGuard{}
}

func (g *BookingGuard) Authorize(actor Actor, booking *entity.Booking, op Operation) error {
	p, ok := policies[actor.RoleID]
	if !ok || !p.allows(actor, booking, op) {
		return apperror.Forbidden("Not authorized to " + string(op) + " this booking")
	}
	return nil
}

// AuthorizeStatusUpdate gates the generic status update: the caller must be
// allowed to update the booking and to request that particular status.
func (g *BookingGuard) AuthorizeStatusUpdate(actor Actor, booking *entity.Booking, to entity.BookingStatus) error {
	if err := g.Authorize(actor, booking, OpUpdateStatus); err != nil {
		return err
	}
	if !policies[actor.RoleID].settable(to) {
		return apperror.Forbidden("Not authorized to set booking status to " + string(to))
	}
	return nil
}

func (g *BookingGuard) AuthorizeCreate(actor Actor) error {
	if actor.RoleID != entity.RoleIDCustomer {
		return apperror.Forbidden("Only customers can create bookings")
	}
	return nil
}
