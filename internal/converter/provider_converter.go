package converter

import (
	"strings"
	"time"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// ProviderToResponse converts a Provider entity to its public form. Private
// fields (notification preferences, subscription) are left out; use
// ProviderToOwnerResponse for the provider's own profile.
func ProviderToResponse(provider *entity.Provider) *dto.ProviderResponse {
	if provider == nil {
		return nil
	}

	response := &dto.ProviderResponse{
		ID:                     provider.ID,
		UserID:                 provider.UserID,
		BusinessName:           provider.BusinessName,
		FirstName:              provider.FirstName,
		LastName:               provider.LastName,
		Description:            provider.Description,
		Address:                provider.Address,
		Country:                provider.Country,
		Coordinates:            PairFromCoordinates(provider.Location),
		ContactInfo:            provider.ContactInfo,
		ServiceCategories:      provider.ServiceCategories.Data(),
		Availability:           provider.Availability.Data(),
		Rating:                 provider.Rating,
		ReviewCount:            provider.ReviewCount,
		IsVerified:             provider.IsVerified,
		IsAdultServiceProvider: provider.IsAdultServiceProvider,
		CreatedAt:              provider.CreatedAt,
		Stats: dto.ProviderStatsResponse{
			CompletedServices: provider.CompletedServices,
			TotalEarnings:     provider.TotalEarnings,
			AcceptanceRate:    provider.AcceptanceRate,
		},
	}

	if len(provider.Services) > 0 {
		response.Services = ServicesToResponses(provider.Services)
	}

	if len(provider.Reviews) > 0 {
		response.Reviews = make([]dto.ReviewResponse, len(provider.Reviews))
		for i, r := range provider.Reviews {
			response.Reviews[i] = dto.ReviewResponse{
				ID:        r.ID,
				User:      reviewerSummary(&r.User),
				Rating:    r.Rating,
				Text:      r.Text,
				CreatedAt: r.CreatedAt,
			}
		}
	}

	return response
}

// reviewers are shown by name only
func reviewerSummary(user *entity.User) *dto.UserSummary {
	if user.ID == uuid.Nil {
		return nil
	}
	return &dto.UserSummary{ID: user.ID, Name: user.Name}
}

func ProviderToOwnerResponse(provider *entity.Provider, now time.Time) *dto.ProviderResponse {
	response := ProviderToResponse(provider)
	if response == nil {
		return nil
	}
	prefs := provider.NotificationPreferences.Data()
	response.NotificationPreferences = &prefs
	response.Subscription = SubscriptionToResponse(provider.Subscription, now)
	return response
}

func ProvidersToResponses(providers []entity.Provider) []dto.ProviderResponse {
	responses := make([]dto.ProviderResponse, len(providers))
	for i := range providers {
		responses[i] = *ProviderToResponse(&providers[i])
	}
	return responses
}

// ProviderToSummary returns nil for a relation that was not loaded.
func ProviderToSummary(provider *entity.Provider) *dto.ProviderSummary {
	if provider == nil || provider.ID == uuid.Nil {
		return nil
	}
	return &dto.ProviderSummary{
		ID:           provider.ID,
		UserID:       provider.UserID,
		BusinessName: provider.BusinessName,
		Address:      provider.Address,
		ContactInfo:  provider.ContactInfo,
	}
}

func SubscriptionToResponse(sub entity.Subscription, now time.Time) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		Status:         sub.Status,
		TrialStartDate: sub.TrialStartDate,
		TrialEndDate:   sub.TrialEndDate,
		Plan:           sub.Plan,
		Price:          sub.Price,
		DaysRemaining:  sub.DaysRemaining(now),
	}
}

func ContactInfoFromRequest(req *dto.ContactInfoRequest) entity.ContactInfo {
	if req == nil {
		return entity.ContactInfo{}
	}
	return entity.ContactInfo{
		Phone:   req.Phone,
		Email:   req.Email,
		Website: req.Website,
	}
}

// WeeklyAvailabilityFromRequest converts weekday keys to lowercase.
// ok is false when a key is not a weekday.
func WeeklyAvailabilityFromRequest(req map[string]dto.DayAvailabilityRequest) (entity.WeeklyAvailability, bool) {
	availability := entity.WeeklyAvailability{}
	for day, d := range req {
		key := lowerDay(day)
		if !entity.IsWeekday(key) {
			return nil, false
		}
		availability[key] = entity.DayAvailability{
			Start:       d.Start,
			End:         d.End,
			IsAvailable: d.IsAvailable,
		}
	}
	return availability, true
}

func lowerDay(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}
