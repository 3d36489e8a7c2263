package converter

import (
	"errors"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/pkg/geo"

	"github.com/google/uuid"
)

var ErrInvalidCoordinates = errors.New("coordinates must be [longitude, latitude]")

// UserToResponse converts a User entity to UserResponse DTO.
// The role name falls back to the role ID when Role is not preloaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	role := user.Role.RoleName
	if role == "" {
		role = entity.RoleNameByID(user.RoleID)
	}

	location := user.Location
	preferences := user.Preferences.Data()

	response := &dto.UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Phone:        user.Phone,
		Role:         role,
		ProfileImage: user.ProfileImage,
		Location:     &location,
		Preferences:  &preferences,
		IsVerified:   user.IsVerified,
		CreatedAt:    user.CreatedAt,
	}

	if len(user.FavoriteProviders) > 0 {
		response.FavoriteProviders = make([]uuid.UUID, len(user.FavoriteProviders))
		for i, p := range user.FavoriteProviders {
			response.FavoriteProviders[i] = p.ID
		}
	}

	return response
}

// UserToSummary returns nil for a relation that was not loaded.
func UserToSummary(user *entity.User) *dto.UserSummary {
	if user == nil || user.ID == uuid.Nil {
		return nil
	}
	return &dto.UserSummary{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
	}
}

func AddressFromRequest(req *dto.AddressRequest) entity.Address {
	if req == nil {
		return entity.Address{}
	}
	return entity.Address{
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
	}
}

// PointFromPair reads a [longitude, latitude] pair. An empty pair yields nil.
func PointFromPair(pair []float64) (*geo.Point, error) {
	if len(pair) == 0 {
		return nil, nil
	}
	if len(pair) != 2 {
		return nil, ErrInvalidCoordinates
	}
	lng, lat := pair[0], pair[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return nil, ErrInvalidCoordinates
	}
	return &geo.Point{Longitude: lng, Latitude: lat}, nil
}

// PairFromCoordinates is the inverse of PointFromPair.
func PairFromCoordinates(c entity.Coordinates) []float64 {
	p := c.Point()
	if p == nil {
		return nil
	}
	return []float64{p.Longitude, p.Latitude}
}

func LocationFromRequest(req *dto.LocationRequest) (entity.Location, error) {
	if req == nil {
		return entity.Location{}, nil
	}
	point, err := PointFromPair(req.Coordinates)
	if err != nil {
		return entity.Location{}, err
	}
	return entity.Location{
		Address:     AddressFromRequest(req.Address),
		Coordinates: entity.CoordinatesFromPoint(point),
	}, nil
}
