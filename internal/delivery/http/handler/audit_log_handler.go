package handler

import (
	"net/http"
	"strconv"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
	log             *logrus.Logger
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase, log *logrus.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
		log:             log,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	auditLogID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid audit log ID")
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"auditLog": auditLog})
}

func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := dto.AuditLogListRequest{
		Action:     q.String("action"),
		EntityType: q.String("entityType"),
		EntityID:   q.String("entityId"),
		UserID:     q.UUID("userId"),
		Page:       q.Int("page"),
		Limit:      q.Int("limit"),
	}
	if !q.Check(w) {
		return
	}
	req.Page, req.Limit = usecase.NormalizePage(req.Page, req.Limit)

	auditLogs, total, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Page(w, "auditLogs", auditLogs, len(auditLogs), total, req.Page, req.Limit)
}

// GetBookingHistory lists the audit trail of one booking.
func (h *AuditLogHandler) GetBookingHistory(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathUUID(w, r, "booking")
	if !ok {
		return
	}

	history, err := h.auditLogUsecase.GetBookingHistory(r.Context(), bookingID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"count": len(history), "history": history})
}
