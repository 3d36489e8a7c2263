package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"service-marketplace/internal/converter"
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/domain/repository"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserUsecase interface {
	GetProfile(ctx context.Context) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateNotificationPreferences(ctx context.Context, req *dto.UpdateUserNotificationsRequest) (*entity.UserNotificationPreferences, error)
	AddFavoriteProvider(ctx context.Context, providerID uuid.UUID) error
	RemoveFavoriteProvider(ctx context.Context, providerID uuid.UUID) error
}

type userUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	providerRepo repository.ProviderRepository
	tokenStore   service.TokenStore
	audit        service.AuditService
}

func NewUserUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	providerRepo repository.ProviderRepository,
	tokenStore service.TokenStore,
	audit service.AuditService,
) UserUsecase {
	return &userUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		providerRepo: providerRepo,
		tokenStore:   tokenStore,
		audit:        audit,
	}
}

func (u *userUsecase) currentUser(ctx context.Context, db *gorm.DB) (*entity.User, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("Not authorized")
	}
	user, err := u.userRepo.FindByID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (u *userUsecase) GetProfile(ctx context.Context) (*dto.UserResponse, error) {
	user, err := u.currentUser(ctx, u.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

// UpdateProfile applies the fields present in req. A new name is split into
// first and last name unless those are given explicitly. Changing the
// password revokes every token of the user.
func (u *userUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.currentUser(ctx, tx)
	if err != nil {
		return nil, err
	}
	old := *user

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		user.FirstName, user.LastName = entity.SplitName(user.Name)
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}

	if req.Location != nil {
		if req.Location.Address != nil {
			user.Location.Address = converter.AddressFromRequest(req.Location.Address)
		}
		if req.Location.Coordinates != nil {
			point, err := converter.PointFromPair(req.Location.Coordinates)
			if err != nil {
				return nil, apperror.Validation("Invalid location: " + err.Error())
			}
			user.Location.Coordinates = entity.CoordinatesFromPoint(point)
		}
	}

	if len(req.Preferences) > 0 {
		prefs := user.Preferences.Data()
		if err := json.Unmarshal(req.Preferences, &prefs); err != nil {
			return nil, apperror.Validation("Invalid preferences")
		}
		user.Preferences = datatypes.NewJSONType(prefs)
	}

	if err := u.userRepo.Update(tx, user); err != nil {
		u.log.Warnf("Failed to update user %s: %+v", user.ID, err)
		return nil, err
	}

	passwordChanged := false
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			u.log.Warnf("Failed to hash password: %+v", err)
			return nil, err
		}
		if err := u.userRepo.UpdatePassword(tx, user.ID, string(hashedPassword)); err != nil {
			u.log.Warnf("Failed to update password of user %s: %+v", user.ID, err)
			return nil, err
		}
		passwordChanged = true
	}

	if err := u.audit.LogUpdate(ctx, tx, &user.ID, entity.AuditActionUserUpdate, entity.AuditEntityUser, user.ID.String(),
		profileAuditView(&old), profileAuditView(user)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if passwordChanged {
		if err := u.tokenStore.RevokeAll(ctx, user.ID); err != nil {
			u.log.Errorf("Failed to revoke tokens of user %s after password change: %+v", user.ID, err)
		}
	}

	return converter.UserToResponse(user), nil
}

func profileAuditView(user *entity.User) map[string]interface{} {
	return map[string]interface{}{
		"name":     user.Name,
		"phone":    user.Phone,
		"location": user.Location,
	}
}

func (u *userUsecase) UpdateNotificationPreferences(ctx context.Context, req *dto.UpdateUserNotificationsRequest) (*entity.UserNotificationPreferences, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.currentUser(ctx, tx)
	if err != nil {
		return nil, err
	}

	prefs := user.Preferences.Data()
	if raw := req.Preferences.NotificationPreferences; len(raw) > 0 {
		if err := json.Unmarshal(raw, &prefs.NotificationPreferences); err != nil {
			return nil, apperror.Validation("Invalid notification preferences")
		}
	}
	user.Preferences = datatypes.NewJSONType(prefs)

	if err := u.userRepo.Update(tx, user); err != nil {
		u.log.Warnf("Failed to update preferences of user %s: %+v", user.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &prefs.NotificationPreferences, nil
}

func (u *userUsecase) AddFavoriteProvider(ctx context.Context, providerID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return apperror.Unauthorized("Not authorized")
	}
	db := u.db.WithContext(ctx)

	provider, err := u.providerRepo.FindByID(db, providerID)
	if err != nil {
		u.log.Warnf("Failed to find provider %s: %+v", providerID, err)
		return err
	}
	if provider == nil {
		return apperror.NotFound("Provider not found")
	}

	exists, err := u.userRepo.HasFavoriteProvider(db, userID, providerID)
	if err != nil {
		u.log.Warnf("Failed to check favorites of user %s: %+v", userID, err)
		return err
	}
	if exists {
		return apperror.Validation("Provider already in favorites")
	}

	if err := u.userRepo.AddFavoriteProvider(db, userID, providerID); err != nil {
		u.log.Warnf("Failed to add favorite provider: %+v", err)
		return err
	}
	return nil
}

func (u *userUsecase) RemoveFavoriteProvider(ctx context.Context, providerID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return apperror.Unauthorized("Not authorized")
	}

	removed, err := u.userRepo.RemoveFavoriteProvider(u.db.WithContext(ctx), userID, providerID)
	if err != nil {
		u.log.Warnf("Failed to remove favorite provider: %+v", err)
		return err
	}
	if removed == 0 {
		return apperror.Validation("Provider not in favorites")
	}
	return nil
}
