package handler

import (
	"net/http"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/response"
	"service-marketplace/pkg/validator"

	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userUsecase usecase.UserUsecase
	validator   *validator.CustomValidator
	log         *logrus.Logger
}

func NewUserHandler(userUsecase usecase.UserUsecase, validator *validator.CustomValidator, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
		log:         log,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUsecase.GetProfile(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"user": user})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	user, err := h.userUsecase.UpdateProfile(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"user": user})
}

func (h *UserHandler) UpdateNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserNotificationsRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	prefs, err := h.userUsecase.UpdateNotificationPreferences(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, response.Payload{"notificationPreferences": prefs})
}

func (h *UserHandler) AddFavoriteProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := pathUUID(w, r, "provider")
	if !ok {
		return
	}

	if err := h.userUsecase.AddFavoriteProvider(r.Context(), providerID); err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Message(w, http.StatusOK, "Provider added to favorites")
}

func (h *UserHandler) RemoveFavoriteProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := pathUUID(w, r, "provider")
	if !ok {
		return
	}

	if err := h.userUsecase.RemoveFavoriteProvider(r.Context(), providerID); err != nil {
		writeError(w, h.log, err)
		return
	}

	response.Message(w, http.StatusOK, "Provider removed from favorites")
}
