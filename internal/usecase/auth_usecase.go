package usecase

import (
	"context"
	"errors"
	"strings"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/domain/repository"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/jwt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = apperror.Conflict("User with this email already exists")
	ErrInvalidCredentials = apperror.Unauthorized("Invalid credentials")
	ErrInvalidToken       = apperror.Unauthorized("Invalid or expired token")
	ErrTokenRevoked       = apperror.Unauthorized("Token has been revoked")
	ErrUserNotFound       = apperror.NotFound("User not found")
	ErrRoleNotFound       = errors.New("role not found")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.AuthResponse, error)
}

type authUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	jwtService  *jwt.JWTService
	tokenStore  service.TokenStore
	tokenIssuer *TokenIssuer
	audit       service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	tokenIssuer *TokenIssuer,
	audit service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:          db,
		log:         log,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
		tokenIssuer: tokenIssuer,
		audit:       audit,
	}
}

// Register creates a customer account. Providers are onboarded from an
// existing customer account.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	role, err := u.roleRepo.FindByName(tx, entity.RoleCustomer)
	if err != nil {
		u.log.Warnf("Failed to find customer role: %+v", err)
		return nil, err
	}
	if role == nil {
		u.log.Errorf("Role %q is not seeded", entity.RoleCustomer)
		return nil, ErrRoleNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	firstName, lastName := entity.SplitName(req.Name)
	user := &entity.User{
		RoleID:      role.ID,
		Name:        strings.TrimSpace(req.Name),
		FirstName:   firstName,
		LastName:    lastName,
		Email:       normalizeEmail(req.Email),
		Password:    string(hashedPassword),
		Phone:       req.Phone,
		Preferences: datatypes.NewJSONType(entity.DefaultUserPreferences()),
		IsActive:    true,
	}

	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}
	user.Role = *role

	if err := u.audit.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, entity.AuditEntityUser, user.ID.String(), map[string]interface{}{
		"email": user.Email,
		"role":  role.RoleName,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.tokenIssuer.Issue(ctx, user)
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.tokenIssuer.Issue(ctx, user)
}

// Logout revokes the access token of the current request and, when given,
// the refresh token issued with it.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return apperror.Unauthorized("Not authorized")
	}
	tokenID, _ := middleware.GetTokenIDFromContext(ctx)

	if err := u.tokenStore.Delete(ctx, userID, jwt.AccessToken, tokenID); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken || claims.UserID != userID {
		return ErrInvalidToken
	}
	if err := u.tokenStore.Delete(ctx, userID, jwt.RefreshToken, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete refresh token: %+v", err)
		return err
	}

	return nil
}

// RefreshToken rotates the pair: the presented refresh token is consumed.
// The new pair is signed with the user's current role.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.AuthResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.tokenStore.Delete(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	return u.tokenIssuer.Issue(ctx, user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
