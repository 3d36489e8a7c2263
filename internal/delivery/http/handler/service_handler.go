package handler

import (
	"net/http"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/response"
	"service-marketplace/pkg/validator"

	"github.com/sirupsen/logrus"
)

type ServiceHandler struct {
	serviceUsecase usecase.ServiceUsecase
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewServiceHandler(serviceUsecase usecase.ServiceUsecase, validator *validator.CustomValidator, log *logrus.Logger) *ServiceHandler {
	return &ServiceHandler{
		serviceUsecase: serviceUsecase,
		validator:      validator,
		log:            log,
	}
}

func (h *ServiceHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := dto.ServiceListRequest{
		Category:      q.String("category"),
		CategoryGroup: q.String("categoryGroup"),
		MinPrice:      q.Decimal("minPrice"),
		MaxPrice:      q.Decimal("maxPrice"),
		MinDuration:   q.IntPtr("minDuration"),
		MaxDuration:   q.IntPtr("maxDuration"),
		AdultOnly:     q.Bool("adultOnly"),
		Page:          q.Int("page"),
		Limit:         q.Int("limit"),
	}
	if !q.Check(w) {
		return
	}
	req.Page, req.Limit = usecase.NormalizePage(req.Page, req.Limit)

	services, total, err := h.serviceUsecase.GetServices(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Page(w, "services", services, len(services), total, req.Page, req.Limit)
}

func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "service")
	if !ok {
		return
	}

	service, err := h.serviceUsecase.GetService(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"service": service})
}

func (h *ServiceHandler) GetProviderServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.serviceUsecase.GetProviderServices(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"count": len(services), "services": services})
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateServiceRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	service, err := h.serviceUsecase.CreateService(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, response.Payload{"service": service})
}

func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "service")
	if !ok {
		return
	}

	var req dto.UpdateServiceRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	service, err := h.serviceUsecase.UpdateService(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"service": service})
}

func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "service")
	if !ok {
		return
	}

	if err := h.serviceUsecase.DeleteService(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Message(w, http.StatusOK, "Service deleted")
}
