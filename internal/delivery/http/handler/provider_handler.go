package handler

import (
	"net/http"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/response"
	"service-marketplace/pkg/validator"

	"github.com/sirupsen/logrus"
)

type ProviderHandler struct {
	providerUsecase usecase.ProviderUsecase
	validator       *validator.CustomValidator
	log             *logrus.Logger
}

func NewProviderHandler(providerUsecase usecase.ProviderUsecase, validator *validator.CustomValidator, log *logrus.Logger) *ProviderHandler {
	return &ProviderHandler{
		providerUsecase: providerUsecase,
		validator:       validator,
		log:             log,
	}
}

// GetProviders lists providers. lat, lng and distance (km) enable the radius
// search; all three must be present.
func (h *ProviderHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := dto.ProviderListRequest{
		Category:      q.String("category"),
		CategoryGroup: q.String("categoryGroup"),
		AdultOnly:     q.Bool("adultOnly"),
		Latitude:      q.Float("lat"),
		Longitude:     q.Float("lng"),
		Distance:      q.Float("distance"),
		Day:           q.String("day"),
		Page:          q.Int("page"),
		Limit:         q.Int("limit"),
	}
	if !q.Check(w) {
		return
	}
	req.Page, req.Limit = usecase.NormalizePage(req.Page, req.Limit)

	providers, total, err := h.providerUsecase.GetProviders(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Page(w, "providers", providers, len(providers), total, req.Page, req.Limit)
}

func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "provider")
	if !ok {
		return
	}

	provider, err := h.providerUsecase.GetProvider(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"provider": provider})
}

// CreateProvider onboards the calling customer as a provider. The response
// carries a new token pair because the role changed.
func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProviderRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	onboarding, err := h.providerUsecase.CreateProvider(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, response.Payload{
		"provider":     onboarding.Provider,
		"token":        onboarding.Auth.Token,
		"refreshToken": onboarding.Auth.RefreshToken,
		"expiresIn":    onboarding.Auth.ExpiresIn,
		"user":         onboarding.Auth.User,
	})
}

func (h *ProviderHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providerUsecase.GetProfile(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"provider": provider})
}

func (h *ProviderHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProviderRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	provider, err := h.providerUsecase.UpdateProfile(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"provider": provider})
}

func (h *ProviderHandler) UpdateNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProviderNotificationsRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	prefs, err := h.providerUsecase.UpdateNotificationPreferences(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"notificationPreferences": prefs})
}

func (h *ProviderHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	subscription, err := h.providerUsecase.GetSubscription(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"subscription": subscription})
}

func (h *ProviderHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.providerUsecase.GetStats(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"stats": stats})
}

func (h *ProviderHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "provider")
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.providerUsecase.AddReview(r.Context(), id, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Message(w, http.StatusCreated, "Review added")
}
