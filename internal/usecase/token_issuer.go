package usecase

import (
	"context"

	"service-marketplace/internal/converter"
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/jwt"

	"github.com/sirupsen/logrus"
)

// TokenIssuer signs an access/refresh pair for a user and records both ids
// in the token store.
type TokenIssuer struct {
	log        *logrus.Logger
	jwtService *jwt.JWTService
	tokenStore service.TokenStore
}

func NewTokenIssuer(log *logrus.Logger, jwtService *jwt.JWTService, tokenStore service.TokenStore) *TokenIssuer {
	return &TokenIssuer{
		log:        log,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

func (i *TokenIssuer) Issue(ctx context.Context, user *entity.User) (*dto.AuthResponse, error) {
	accessToken, accessTokenID, err := i.jwtService.GenerateAccessToken(user.ID, user.Email, user.RoleID)
	if err != nil {
		i.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := i.jwtService.GenerateRefreshToken(user.ID, user.Email, user.RoleID)
	if err != nil {
		i.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := i.tokenStore.Save(ctx, user.ID, jwt.AccessToken, accessTokenID, i.jwtService.GetAccessExpiry()); err != nil {
		i.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := i.tokenStore.Save(ctx, user.ID, jwt.RefreshToken, refreshTokenID, i.jwtService.GetRefreshExpiry()); err != nil {
		i.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(i.jwtService.GetAccessExpiry().Seconds()),
		User:         converter.UserToResponse(user),
	}, nil
}
