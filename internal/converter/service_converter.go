package converter

import (
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"
)

func ServiceToResponse(service *entity.Service) *dto.ServiceResponse {
	if service == nil {
		return nil
	}

	return &dto.ServiceResponse{
		ID:                      service.ID,
		ProviderID:              service.ProviderID,
		Provider:                ProviderToSummary(service.Provider),
		Name:                    service.Name,
		Description:             service.Description,
		Duration:                service.Duration,
		Price:                   service.Price,
		Category:                service.Category,
		CategoryGroup:           service.CategoryGroup,
		IsAdultOnly:             service.IsAdultOnly,
		RequiresAgeVerification: service.RequiresAgeVerification,
		AcceptsUrgentRequests:   service.AcceptsUrgentRequests,
		MaxTravelDistance:       service.MaxTravelDistance,
		PriceRange: dto.PriceRange{
			Min: service.PriceRangeMin,
			Max: service.PriceRangeMax,
		},
		Availability: service.Availability.Data(),
		IsActive:     service.IsActive,
		CreatedAt:    service.CreatedAt,
		UpdatedAt:    service.UpdatedAt,
	}
}

func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, len(services))
	for i := range services {
		responses[i] = *ServiceToResponse(&services[i])
	}
	return responses
}

// ServiceAvailabilityFromRequest converts weekday keys to lowercase.
// ok is false when a key is not a weekday.
func ServiceAvailabilityFromRequest(req map[string]dto.ServiceDayRequest) (entity.ServiceAvailability, bool) {
	availability := entity.ServiceAvailability{}
	for day, d := range req {
		key := lowerDay(day)
		if !entity.IsWeekday(key) {
			return nil, false
		}
		slots := make([]entity.TimeSlot, len(d.Slots))
		for i, s := range d.Slots {
			slots[i] = entity.TimeSlot{Start: s.Start, End: s.End}
		}
		availability[key] = entity.ServiceDay{Available: d.Available, Slots: slots}
	}
	return availability, true
}
