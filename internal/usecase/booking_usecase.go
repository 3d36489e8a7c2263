package usecase

import (
	"context"
	"fmt"
	"time"

	"service-marketplace/internal/authz"
	"service-marketplace/internal/converter"
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/domain/repository"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/geo"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type BookingUsecase interface {
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	GetCustomerBookings(ctx context.Context, req *dto.BookingListRequest) ([]dto.BookingResponse, int64, error)
	GetProviderBookings(ctx context.Context, req *dto.BookingListRequest) ([]dto.BookingResponse, int64, error)
	GetUrgentRequests(ctx context.Context) ([]dto.BookingResponse, error)
	GetAllBookings(ctx context.Context) ([]dto.BookingResponse, error)
	AcceptBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	DeclineBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	CompleteBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

type bookingUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	providerRepo repository.ProviderRepository
	serviceRepo  repository.ServiceRepository
	auditService service.AuditService
	guard        *authz.BookingGuard
	locker       *service.BookingLocker
	notifier     service.Notifier
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	providerRepo repository.ProviderRepository,
	serviceRepo repository.ServiceRepository,
	auditService service.AuditService,
	guard *authz.BookingGuard,
	locker *service.BookingLocker,
	notifier service.Notifier,
) BookingUsecase {
	return &bookingUsecase{
		db:           db,
		log:          log,
		bookingRepo:  bookingRepo,
		providerRepo: providerRepo,
		serviceRepo:  serviceRepo,
		auditService: auditService,
		guard:        guard,
		locker:       locker,
		notifier:     notifier,
	}
}

// transition describes one edge request against the lifecycle.
type transition struct {
	op    authz.Operation
	to    entity.BookingStatus
	verb  string
	note  string
	event service.NotificationEvent
	// providerOnly operations need the caller's provider profile
	providerOnly bool
}

var (
	acceptTransition = transition{
		op:           authz.OpAccept,
		to:           entity.BookingStatusAccepted,
		verb:         "accepted",
		note:         "Request accepted by provider",
		event:        service.EventBookingAccepted,
		providerOnly: true,
	}
	declineTransition = transition{
		op:           authz.OpDecline,
		to:           entity.BookingStatusDeclined,
		verb:         "declined",
		note:         "Request declined by provider",
		event:        service.EventBookingDeclined,
		providerOnly: true,
	}
	completeTransition = transition{
		op:           authz.OpComplete,
		to:           entity.BookingStatusCompleted,
		verb:         "completed",
		note:         "Service completed by provider",
		event:        service.EventBookingCompleted,
		providerOnly: true,
	}
)

func cancelTransition(role string) transition {
	return transition{
		op:    authz.OpCancel,
		to:    entity.BookingStatusCancelled,
		verb:  "cancelled",
		note:  "Booking cancelled by " + role,
		event: service.EventBookingCancelled,
	}
}

func statusUpdateTransition(to entity.BookingStatus) transition {
	return transition{
		op:    authz.OpUpdateStatus,
		to:    to,
		verb:  "set to " + string(to),
		note:  "Status changed to " + string(to),
		event: service.EventBookingStatusChanged,
	}
}

// currentActor builds the caller from the request context. Provider callers
// get their provider profile attached when they have one.
func (u *bookingUsecase) currentActor(ctx context.Context) (authz.Actor, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return authz.Actor{}, apperror.Unauthorized("Not authorized")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	actor := authz.Actor{UserID: userID, RoleID: roleID}
	if roleID != entity.RoleIDProvider {
		return actor, nil
	}

	provider, err := u.providerRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find provider for user %s: %+v", userID, err)
		return authz.Actor{}, err
	}
	if provider != nil {
		actor.ProviderID = &provider.ID
	}
	return actor, nil
}

func (u *bookingUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	actor, err := u.currentActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.guard.AuthorizeCreate(actor); err != nil {
		return nil, err
	}

	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return nil, apperror.Validation("Invalid provider ID")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperror.Validation("Invalid service ID")
	}

	db := u.db.WithContext(ctx)

	provider, err := u.providerRepo.FindByID(db, providerID)
	if err != nil {
		u.log.Warnf("Failed to find provider %s: %+v", providerID, err)
		return nil, err
	}
	if provider == nil {
		return nil, apperror.NotFound("Provider not found")
	}

	svc, err := u.serviceRepo.FindByID(db, serviceID)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", serviceID, err)
		return nil, err
	}
	if svc == nil {
		return nil, apperror.NotFound("Service not found")
	}
	if svc.ProviderID != provider.ID {
		return nil, apperror.PreconditionFailed("Service does not belong to this provider")
	}
	if req.IsUrgent && !svc.AcceptsUrgentRequests {
		return nil, apperror.PreconditionFailed("Service does not accept urgent requests")
	}

	customerLocation, err := converter.LocationFromRequest(req.CustomerLocation)
	if err != nil {
		return nil, apperror.Validation("Invalid customer location: " + err.Error())
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}
	requestedTime := entity.RequestedTimeASAP
	if req.RequestedTime != "" {
		requestedTime = entity.RequestedTime(req.RequestedTime)
	}

	booking := &entity.Booking{
		CustomerID:         actor.UserID,
		ProviderID:         provider.ID,
		ServiceID:          svc.ID,
		ServiceDetails:     entity.SnapshotOf(svc),
		Date:               date,
		Status:             entity.BookingStatusPending,
		IsUrgent:           req.IsUrgent,
		RequestedTime:      requestedTime,
		CustomerLocation:   customerLocation,
		ProviderLocation:   provider.Location,
		DistanceToCustomer: geo.DistanceMiles(customerLocation.Point(), provider.Location.Point()),
		Notes:              req.Notes,
		TotalPrice:         svc.Price,
		PaymentStatus:      entity.PaymentStatusPending,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.bookingRepo.Create(tx, booking); err != nil {
		u.log.Warnf("Failed to create booking: %+v", err)
		return nil, err
	}

	entry := &entity.BookingTimelineEntry{
		BookingID: booking.ID,
		Status:    entity.TimelineStatusRequested,
		Note:      "Service requested",
		Timestamp: now,
	}
	if err := u.bookingRepo.AppendTimeline(tx, entry); err != nil {
		u.log.Warnf("Failed to append timeline for booking %s: %+v", booking.ID, err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionBookingCreate, entity.AuditEntityBooking, booking.ID.String(), booking); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"provider_id": provider.ID,
		"customer_id": actor.UserID,
	}).Info("Booking requested")

	created, err := u.reload(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	u.notifyNewRequest(created, provider)

	return converter.BookingToResponse(created), nil
}

func (u *bookingUsecase) GetBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	actor, err := u.currentActor(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := u.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.guard.Authorize(actor, booking, authz.OpView); err != nil {
		return nil, err
	}

	return converter.BookingToResponse(booking), nil
}

func (u *bookingUsecase) GetCustomerBookings(ctx context.Context, req *dto.BookingListRequest) ([]dto.BookingResponse, int64, error) {
	actor, err := u.currentActor(ctx)
	if err != nil {
		return nil, 0, err
	}
	filter, err := bookingFilterFromRequest(req)
	if err != nil {
		return nil, 0, err
	}

	bookings, total, err := u.bookingRepo.FindByCustomerID(u.db.WithContext(ctx), actor.UserID, filter)
	if err != nil {
		u.log.Warnf("Failed to find bookings for customer %s: %+v", actor.UserID, err)
		return nil, 0, err
	}

	return converter.BookingsToResponses(bookings), total, nil
}

func (u *bookingUsecase) GetProviderBookings(ctx context.Context, req *dto.BookingListRequest) ([]dto.BookingResponse, int64, error) {
	actor, err := u.currentActor(ctx)
	if err != nil {
		return nil, 0, err
	}
	if actor.ProviderID == nil {
		return nil, 0, apperror.NotFound("Provider not found")
	}
	filter, err := bookingFilterFromRequest(req)
	if err != nil {
		return nil, 0, err
	}

	bookings, total, err := u.bookingRepo.FindByProviderID(u.db.WithContext(ctx), *actor.ProviderID, filter)
	if err != nil {
		u.log.Warnf("Failed to find bookings for provider %s: %+v", *actor.ProviderID, err)
		return nil, 0, err
	}

	return converter.BookingsToResponses(bookings), total, nil
}

func (u *bookingUsecase) GetUrgentRequests(ctx context.Context) ([]dto.BookingResponse, error) {
	actor, err := u.currentActor(ctx)
	if err != nil {
		return nil, err
	}
	if actor.ProviderID == nil {
		return nil, apperror.NotFound("Provider not found")
	}

	bookings, err := u.bookingRepo.FindUrgentByProviderID(u.db.WithContext(ctx), *actor.ProviderID)
	if err != nil {
		u.log.Warnf("Failed to find urgent requests for provider %s: %+v", *actor.ProviderID, err)
		return nil, err
	}

	return converter.BookingsToResponses(bookings), nil
}

func (u *bookingUsecase) GetAllBookings(ctx context.Context) ([]dto.BookingResponse, error) {
	bookings, err := u.bookingRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find bookings: %+v", err)
		return nil, err
	}
	return converter.BookingsToResponses(bookings), nil
}

func (u *bookingUsecase) AcceptBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	return u.applyTransition(ctx, id, func(authz.Actor) transition { return acceptTransition })
}

func (u *bookingUsecase) DeclineBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	return u.applyTransition(ctx, id, func(authz.Actor) transition { return declineTransition })
}

func (u *bookingUsecase) CompleteBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	return u.applyTransition(ctx, id, func(authz.Actor) transition { return completeTransition })
}

func (u *bookingUsecase) CancelBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	return u.applyTransition(ctx, id, func(actor authz.Actor) transition { return cancelTransition(actor.Role()) })
}

func (u *bookingUsecase) UpdateBookingStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	to := entity.BookingStatus(req.Status)
	if !to.IsValid() {
		return nil, apperror.Validation("Invalid status")
	}
	return u.applyTransition(ctx, id, func(authz.Actor) transition { return statusUpdateTransition(to) })
}

// applyTransition runs one status change: authorize, check the edge, then
// write status, timeline and audit row (plus stats on completion) in one
// transaction. Notifications go out only after commit.
func (u *bookingUsecase) applyTransition(ctx context.Context, id uuid.UUID, build func(authz.Actor) transition) (*dto.BookingResponse, error) {
	actor, err := u.currentActor(ctx)
	if err != nil {
		return nil, err
	}
	t := build(actor)

	unlock := u.locker.Lock(id)
	defer unlock()

	booking, err := u.reload(ctx, id)
	if err != nil {
		return nil, err
	}

	if t.providerOnly && actor.RoleID == entity.RoleIDProvider && actor.ProviderID == nil {
		return nil, apperror.NotFound("Provider not found")
	}
	if t.op == authz.OpUpdateStatus {
		err = u.guard.AuthorizeStatusUpdate(actor, booking, t.to)
	} else {
		err = u.guard.Authorize(actor, booking, t.op)
	}
	if err != nil {
		return nil, err
	}

	from := booking.Status
	if !from.CanTransitionTo(t.to) {
		return nil, cannotTransition(t, from)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.bookingRepo.UpdateStatus(tx, id, from, t.to)
	if err != nil {
		u.log.Warnf("Failed to update status of booking %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		// another instance moved it first
		tx.Rollback()
		current, err := u.reload(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, cannotTransition(t, current.Status)
	}

	entry := &entity.BookingTimelineEntry{
		BookingID: id,
		Status:    string(t.to),
		Note:      t.note,
		Timestamp: time.Now().UTC(),
	}
	if err := u.bookingRepo.AppendTimeline(tx, entry); err != nil {
		u.log.Warnf("Failed to append timeline for booking %s: %+v", id, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionBookingTransition, entity.AuditEntityBooking, id.String(),
		map[string]interface{}{"status": from},
		map[string]interface{}{"status": t.to, "note": t.note},
	); err != nil {
		return nil, err
	}

	if t.to == entity.BookingStatusCompleted {
		rows, err := u.providerRepo.IncrementCompletionStats(tx, booking.ProviderID, booking.TotalPrice)
		if err != nil {
			u.log.Warnf("Failed to update stats of provider %s: %+v", booking.ProviderID, err)
			return nil, err
		}
		if rows == 0 {
			u.log.Warnf("Provider %s of booking %s no longer exists, stats not updated", booking.ProviderID, id)
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"booking_id": id,
		"from":       from,
		"to":         t.to,
		"actor":      actor.UserID,
	}).Info("Booking status changed")

	updated, err := u.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	u.notifyTransition(updated, actor, t)

	return converter.BookingToResponse(updated), nil
}

func (u *bookingUsecase) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	actor, err := u.currentActor(ctx)
	if err != nil {
		return err
	}

	unlock := u.locker.Lock(id)
	defer unlock()

	booking, err := u.reload(ctx, id)
	if err != nil {
		return err
	}
	if err := u.guard.Authorize(actor, booking, authz.OpDelete); err != nil {
		return err
	}
	if !booking.Status.IsDeletable() {
		return errNotDeletable
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.bookingRepo.Delete(tx, id, entity.DeletableStatuses())
	if err != nil {
		u.log.Warnf("Failed to delete booking %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return errNotDeletable
	}

	if err := u.auditService.LogDelete(ctx, tx, &actor.UserID, entity.AuditActionBookingDelete, entity.AuditEntityBooking, id.String(), booking); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.WithField("booking_id", id).Info("Booking deleted")
	return nil
}

var errNotDeletable = apperror.PreconditionFailed("Cannot delete booking that is not pending or cancelled")

func cannotTransition(t transition, current entity.BookingStatus) error {
	return apperror.PreconditionFailed(fmt.Sprintf("Booking cannot be %s because it is %s", t.verb, current))
}

// reload fetches the booking with its relations, or NotFound.
func (u *bookingUsecase) reload(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", id, err)
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking not found")
	}
	return booking, nil
}

func bookingFilterFromRequest(req *dto.BookingListRequest) (entity.BookingFilter, error) {
	filter := entity.BookingFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	filter.Page, filter.Limit = NormalizePage(req.Page, req.Limit)

	if req.Status != "" {
		status := entity.BookingStatus(req.Status)
		if !status.IsValid() {
			return filter, apperror.Validation("Invalid status")
		}
		filter.Status = status
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, apperror.Validation("endDate must not be before startDate")
	}
	return filter, nil
}

// NormalizePage applies the default page and limit and caps the limit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
