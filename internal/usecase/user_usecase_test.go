package usecase

import (
	"encoding/json"
	"testing"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/jwt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type userFixture struct {
	mock      sqlmock.Sqlmock
	users     *fakeUserRepo
	providers *fakeProviderRepo
	tokens    *fakeTokenStore
	audit     *fakeAudit
	usecase   UserUsecase
	user      *entity.User
}

func newUserFixture(t *testing.T) *userFixture {
	db, mock := setupMockDB(t)

	f := &userFixture{
		mock:      mock,
		users:     newFakeUserRepo(),
		providers: newFakeProviderRepo(),
		tokens:    newFakeTokenStore(),
		audit:     &fakeAudit{},
	}
	f.usecase = NewUserUsecase(db, newTestLogger(), f.users, f.providers, f.tokens, f.audit)

	f.user = f.users.add(&entity.User{
		RoleID:      entity.RoleIDCustomer,
		Name:        "Jane Customer",
		FirstName:   "Jane",
		LastName:    "Customer",
		Email:       "jane@example.com",
		Preferences: datatypes.NewJSONType(entity.DefaultUserPreferences()),
		IsActive:    true,
	})
	return f
}

func strPtr(s string) *string { return &s }

func TestUserUsecase_GetProfile(t *testing.T) {
	f := newUserFixture(t)

	profile, err := f.usecase.GetProfile(asUser(f.user.ID, entity.RoleIDCustomer))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.Equal(t, entity.RoleCustomer, profile.Role)

	_, err = f.usecase.GetProfile(asUser(uuid.New(), entity.RoleIDCustomer))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserUsecase_UpdateProfile(t *testing.T) {
	f := newUserFixture(t)
	expectCommittedTx(f.mock)

	resp, err := f.usecase.UpdateProfile(asUser(f.user.ID, entity.RoleIDCustomer), &dto.UpdateProfileRequest{
		Name:  strPtr("  Janet Van Customer "),
		Phone: strPtr("555-0199"),
		Location: &dto.LocationRequest{
			Address:     &dto.AddressRequest{City: "Austin", State: "TX"},
			Coordinates: []float64{-97.74, 30.27},
		},
		Preferences: json.RawMessage(`{"maxDistance": 25}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "Janet Van Customer", resp.Name)
	assert.Equal(t, "Janet", resp.FirstName)
	assert.Equal(t, "Van Customer", resp.LastName)
	assert.Equal(t, "555-0199", resp.Phone)
	require.NotNil(t, resp.Location)
	assert.Equal(t, "Austin", resp.Location.City)
	require.NotNil(t, resp.Location.Latitude)
	assert.InDelta(t, 30.27, *resp.Location.Latitude, 1e-9)

	prefs := f.users.get(f.user.ID).Preferences.Data()
	assert.Equal(t, 25.0, prefs.MaxDistance)
	assert.True(t, prefs.NotificationPreferences.SMS.Enabled)

	assert.Equal(t, 1, f.audit.count(entity.AuditActionUserUpdate))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUserUsecase_UpdateProfileInvalidCoordinates(t *testing.T) {
	f := newUserFixture(t)
	expectRolledBackTx(f.mock)

	_, err := f.usecase.UpdateProfile(asUser(f.user.ID, entity.RoleIDCustomer), &dto.UpdateProfileRequest{
		Location: &dto.LocationRequest{Coordinates: []float64{200, 0}},
	})
	assert.True(t, apperror.IsType(err, apperror.TypeValidation))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUserUsecase_PasswordChangeRevokesTokens(t *testing.T) {
	f := newUserFixture(t)
	ctx := asUser(f.user.ID, entity.RoleIDCustomer)
	require.NoError(t, f.tokens.Save(ctx, f.user.ID, jwt.AccessToken, "a1", 0))
	require.NoError(t, f.tokens.Save(ctx, f.user.ID, jwt.RefreshToken, "r1", 0))
	expectCommittedTx(f.mock)

	_, err := f.usecase.UpdateProfile(ctx, &dto.UpdateProfileRequest{Password: strPtr("new-secret")})
	require.NoError(t, err)

	stored := f.users.get(f.user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-secret")))
	assert.Zero(t, f.tokens.countFor(f.user.ID))
}

func TestUserUsecase_UpdateNotificationPreferences(t *testing.T) {
	f := newUserFixture(t)
	expectCommittedTx(f.mock)

	req := &dto.UpdateUserNotificationsRequest{}
	req.Preferences.NotificationPreferences = json.RawMessage(`{"sms": {"enabled": false}}`)

	prefs, err := f.usecase.UpdateNotificationPreferences(asUser(f.user.ID, entity.RoleIDCustomer), req)
	require.NoError(t, err)
	assert.False(t, prefs.SMS.Enabled)
	assert.True(t, prefs.Email.Enabled)
	assert.False(t, f.users.get(f.user.ID).Preferences.Data().NotificationPreferences.SMS.Enabled)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUserUsecase_Favorites(t *testing.T) {
	f := newUserFixture(t)
	ctx := asUser(f.user.ID, entity.RoleIDCustomer)
	provider := f.providers.add(&entity.Provider{UserID: uuid.New(), BusinessName: "Glow"})

	require.NoError(t, f.usecase.AddFavoriteProvider(ctx, provider.ID))
	assert.True(t, f.users.favorites[f.user.ID][provider.ID])

	err := f.usecase.AddFavoriteProvider(ctx, provider.ID)
	assert.True(t, apperror.IsType(err, apperror.TypeValidation))

	err = f.usecase.AddFavoriteProvider(ctx, uuid.New())
	assert.True(t, apperror.IsType(err, apperror.TypeNotFound))

	require.NoError(t, f.usecase.RemoveFavoriteProvider(ctx, provider.ID))
	err = f.usecase.RemoveFavoriteProvider(ctx, provider.ID)
	assert.True(t, apperror.IsType(err, apperror.TypeValidation))
}
