package handler

import (
	"context"
	"net/http"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/response"
	"service-marketplace/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator, log *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
		log:            log,
	}
}

// CreateBooking handles a service request from a customer
// @Summary Request a service
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Payload
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	booking, err := h.bookingUsecase.CreateBooking(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, response.Payload{"booking": booking})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "booking")
	if !ok {
		return
	}

	booking, err := h.bookingUsecase.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"booking": booking})
}

func (h *BookingHandler) GetCustomerBookings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.bookingUsecase.GetCustomerBookings)
}

func (h *BookingHandler) GetProviderBookings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.bookingUsecase.GetProviderBookings)
}

type bookingLister func(ctx context.Context, req *dto.BookingListRequest) ([]dto.BookingResponse, int64, error)

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, find bookingLister) {
	q := newQueryParser(r)
	req := dto.BookingListRequest{
		Status:    q.String("status"),
		StartDate: q.Time("startDate"),
		EndDate:   q.Time("endDate"),
		Page:      q.Int("page"),
		Limit:     q.Int("limit"),
	}
	if !q.Check(w) {
		return
	}
	req.Page, req.Limit = usecase.NormalizePage(req.Page, req.Limit)

	bookings, total, err := find(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Page(w, "bookings", bookings, len(bookings), total, req.Page, req.Limit)
}

func (h *BookingHandler) GetUrgentRequests(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUsecase.GetUrgentRequests(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"count": len(bookings), "bookings": bookings})
}

func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUsecase.GetAllBookings(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"count": len(bookings), "bookings": bookings})
}

type bookingAction func(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)

func (h *BookingHandler) transition(action bookingAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "booking")
		if !ok {
			return
		}

		booking, err := action(r.Context(), id)
		if err != nil {
			writeError(w, h.log, err)
			return
		}

		response.Success(w, http.StatusOK, response.Payload{"booking": booking})
	}
}

func (h *BookingHandler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(h.bookingUsecase.AcceptBooking)(w, r)
}

func (h *BookingHandler) DeclineBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(h.bookingUsecase.DeclineBooking)(w, r)
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(h.bookingUsecase.CompleteBooking)(w, r)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(h.bookingUsecase.CancelBooking)(w, r)
}

// UpdateBookingStatus sets the status directly, within the same rules as the
// dedicated transition endpoints.
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "booking")
	if !ok {
		return
	}

	var req dto.UpdateBookingStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	booking, err := h.bookingUsecase.UpdateBookingStatus(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"booking": booking})
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "booking")
	if !ok {
		return
	}

	if err := h.bookingUsecase.DeleteBooking(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Message(w, http.StatusOK, "Booking deleted")
}
