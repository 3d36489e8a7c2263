package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/geo"
	"service-marketplace/pkg/jwt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type stubGeocoder struct {
	point *geo.Point
	err   error
	calls []string
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (*geo.Point, error) {
	g.calls = append(g.calls, address)
	return g.point, g.err
}

type providerFixture struct {
	mock      sqlmock.Sqlmock
	users     *fakeUserRepo
	providers *fakeProviderRepo
	bookings  *fakeBookingRepo
	tokens    *fakeTokenStore
	audit     *fakeAudit
	notifier  *fakeNotifier
	geocoder  *stubGeocoder
	usecase   ProviderUsecase
	now       time.Time

	customer *entity.User
}

func newProviderFixture(t *testing.T) *providerFixture {
	db, mock := setupMockDB(t)
	log := newTestLogger()

	f := &providerFixture{
		mock:      mock,
		users:     newFakeUserRepo(),
		providers: newFakeProviderRepo(),
		tokens:    newFakeTokenStore(),
		audit:     &fakeAudit{},
		notifier:  &fakeNotifier{},
		geocoder:  &stubGeocoder{point: &geo.Point{Longitude: -97.74, Latitude: 30.27}},
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.bookings = newFakeBookingRepo(f.users, f.providers)

	issuer := NewTokenIssuer(log, newTestJWTService(), f.tokens)
	uc := NewProviderUsecase(db, log, f.providers, f.users, fakeRoleRepo{}, f.bookings, f.geocoder, f.tokens, issuer, f.audit, f.notifier)
	uc.(*providerUsecase).now = func() time.Time { return f.now }
	f.usecase = uc

	f.customer = f.users.add(&entity.User{
		RoleID:      entity.RoleIDCustomer,
		Name:        "Jane Customer",
		Email:       "jane@example.com",
		Preferences: datatypes.NewJSONType(entity.DefaultUserPreferences()),
		IsActive:    true,
	})
	return f
}

// seedProvider stores a provider owned by a fresh provider-role user.
func (f *providerFixture) seedProvider(name string, lng, lat *float64) *entity.Provider {
	owner := f.users.add(&entity.User{RoleID: entity.RoleIDProvider, Email: name + "@example.com", IsActive: true})
	return f.providers.add(&entity.Provider{
		UserID:                  owner.ID,
		BusinessName:            name,
		Location:                entity.Coordinates{Longitude: lng, Latitude: lat},
		ServiceCategories:       datatypes.NewJSONType(entity.DefaultServiceCategories()),
		NotificationPreferences: datatypes.NewJSONType(entity.DefaultProviderNotificationPreferences("555-0100", name+"@example.com")),
		Subscription:            entity.NewTrialSubscription(f.now),
	})
}

func floatPtr(v float64) *float64 { return &v }

func TestProviderUsecase_CreateProviderChangesRoleAndReissuesTokens(t *testing.T) {
	f := newProviderFixture(t)
	ctx := asUser(f.customer.ID, entity.RoleIDCustomer)
	require.NoError(t, f.tokens.Save(ctx, f.customer.ID, jwt.AccessToken, "old-access", time.Hour))
	expectCommittedTx(f.mock)

	resp, err := f.usecase.CreateProvider(ctx, &dto.CreateProviderRequest{
		BusinessName: "Jane's Spa",
		Address:      &dto.AddressRequest{Street: "1 Main St", City: "Austin", State: "TX", ZipCode: "78701"},
		ContactInfo:  &dto.ContactInfoRequest{Phone: "555-0123"},
		ServiceCategories: entity.ServiceCategorySelection{
			entity.CategoryGroupWellness: {"swedishMassage": true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane's Spa", resp.Provider.BusinessName)
	assert.Equal(t, "USA", resp.Provider.Country)
	assert.Equal(t, []float64{-97.74, 30.27}, resp.Provider.Coordinates)
	assert.False(t, resp.Provider.IsAdultServiceProvider)
	require.NotNil(t, resp.Provider.Subscription)
	assert.Equal(t, entity.SubscriptionTrial, resp.Provider.Subscription.Status)
	require.NotNil(t, resp.Provider.NotificationPreferences)
	assert.Equal(t, "jane@example.com", resp.Provider.NotificationPreferences.Email.Address)
	assert.Equal(t, "555-0123", resp.Provider.NotificationPreferences.SMS.PhoneNumber)
	assert.Equal(t, []string{"1 Main St, Austin, TX 78701"}, f.geocoder.calls)

	assert.Equal(t, entity.RoleIDProvider, f.users.get(f.customer.ID).RoleID)
	require.NotNil(t, resp.Auth)
	assert.Equal(t, entity.RoleProvider, resp.Auth.User.Role)
	claims, err := newTestJWTService().ValidateToken(resp.Auth.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleIDProvider, claims.RoleID)

	revoked, err := f.tokens.Exists(ctx, f.customer.ID, jwt.AccessToken, "old-access")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 2, f.tokens.countFor(f.customer.ID))

	assert.Equal(t, 1, f.audit.count(entity.AuditActionProviderCreate))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProviderUsecase_CreateProviderTwice(t *testing.T) {
	f := newProviderFixture(t)
	ctx := asUser(f.customer.ID, entity.RoleIDCustomer)
	expectCommittedTx(f.mock)
	expectRolledBackTx(f.mock)

	_, err := f.usecase.CreateProvider(ctx, &dto.CreateProviderRequest{BusinessName: "First"})
	require.NoError(t, err)

	_, err = f.usecase.CreateProvider(ctx, &dto.CreateProviderRequest{BusinessName: "Second"})
	assert.ErrorIs(t, err, ErrProviderExists)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProviderUsecase_CreateProviderAdultCategories(t *testing.T) {
	f := newProviderFixture(t)
	expectCommittedTx(f.mock)

	resp, err := f.usecase.CreateProvider(asUser(f.customer.ID, entity.RoleIDCustomer), &dto.CreateProviderRequest{
		BusinessName: "Evening Touch",
		ServiceCategories: entity.ServiceCategorySelection{
			entity.CategoryGroupAdultOnlyMassage: {"couplesMassage": true},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Provider.IsAdultServiceProvider)
	assert.Empty(t, f.geocoder.calls)
	assert.Nil(t, resp.Provider.Coordinates)
}

func TestProviderUsecase_CreateProviderRejectsBadSelection(t *testing.T) {
	tests := []struct {
		name      string
		selection entity.ServiceCategorySelection
	}{
		{name: "unknown group", selection: entity.ServiceCategorySelection{"gardening": {}}},
		{name: "category in the wrong group", selection: entity.ServiceCategorySelection{
			entity.CategoryGroupBeauty: {"swedishMassage": true},
		}},
		{name: "unknown category", selection: entity.ServiceCategorySelection{
			entity.CategoryGroupBeauty: {"tattoo": true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProviderFixture(t)
			_, err := f.usecase.CreateProvider(asUser(f.customer.ID, entity.RoleIDCustomer), &dto.CreateProviderRequest{
				BusinessName:      "Nope",
				ServiceCategories: tt.selection,
			})
			assert.True(t, apperror.IsType(err, apperror.TypeValidation))
			assert.Empty(t, f.providers.providers)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestProviderUsecase_CreateProviderGeocodeFailure(t *testing.T) {
	f := newProviderFixture(t)
	f.geocoder.point, f.geocoder.err = nil, errors.New("quota exceeded")
	expectCommittedTx(f.mock)

	resp, err := f.usecase.CreateProvider(asUser(f.customer.ID, entity.RoleIDCustomer), &dto.CreateProviderRequest{
		BusinessName: "Offline",
		Address:      &dto.AddressRequest{City: "Nowhere"},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Provider.Coordinates)
	assert.Equal(t, "Nowhere", resp.Provider.Address.City)
}

func TestProviderUsecase_GetProvidersWithinDistance(t *testing.T) {
	f := newProviderFixture(t)
	near := f.seedProvider("near", floatPtr(0), floatPtr(0.1))
	mid := f.seedProvider("mid", floatPtr(0), floatPtr(0.5))
	f.seedProvider("far", floatPtr(0), floatPtr(2))
	f.seedProvider("nowhere", nil, nil)

	resp, total, err := f.usecase.GetProviders(context.Background(), &dto.ProviderListRequest{
		Latitude:  floatPtr(0),
		Longitude: floatPtr(0),
		Distance:  floatPtr(100),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, resp, 2)
	assert.Equal(t, near.ID, resp[0].ID)
	assert.Equal(t, mid.ID, resp[1].ID)
	require.NotNil(t, resp[1].Distance)
	assert.InDelta(t, 34.5, *resp[1].Distance, 0.1)
}

func TestProviderUsecase_GetProvidersWithoutDistance(t *testing.T) {
	f := newProviderFixture(t)
	f.seedProvider("alpha", floatPtr(0), floatPtr(0))
	f.seedProvider("bravo", nil, nil)
	f.seedProvider("charlie", floatPtr(10), floatPtr(10))

	resp, total, err := f.usecase.GetProviders(context.Background(), &dto.ProviderListRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, resp, 1)
	assert.Equal(t, "charlie", resp[0].BusinessName)
	assert.Nil(t, resp[0].Distance)
}

func TestProviderUsecase_GetProvidersUnknownCategory(t *testing.T) {
	f := newProviderFixture(t)

	_, _, err := f.usecase.GetProviders(context.Background(), &dto.ProviderListRequest{Category: "tattoo"})
	assert.True(t, apperror.IsType(err, apperror.TypeValidation))

	_, _, err = f.usecase.GetProviders(context.Background(), &dto.ProviderListRequest{CategoryGroup: "gardening"})
	assert.True(t, apperror.IsType(err, apperror.TypeValidation))
}

func TestProviderUsecase_GetProvider(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", nil, nil)

	resp, err := f.usecase.GetProvider(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", resp.BusinessName)
	assert.Nil(t, resp.NotificationPreferences)

	_, err = f.usecase.GetProvider(context.Background(), uuid.New())
	assert.True(t, apperror.IsType(err, apperror.TypeNotFound))
}

func TestProviderUsecase_GetProfileRequiresProfile(t *testing.T) {
	f := newProviderFixture(t)

	_, err := f.usecase.GetProfile(asUser(f.customer.ID, entity.RoleIDProvider))
	assert.ErrorIs(t, err, ErrProviderProfileNotFound)
}

func TestProviderUsecase_UpdateProfile(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", floatPtr(1), floatPtr(1))
	ctx := asUser(p.UserID, entity.RoleIDProvider)
	f.geocoder.point, f.geocoder.err = nil, errors.New("unavailable")
	expectCommittedTx(f.mock)

	name := "Alpha Wellness"
	resp, err := f.usecase.UpdateProfile(ctx, &dto.UpdateProviderRequest{
		BusinessName: &name,
		Address:      &dto.AddressRequest{City: "Dallas"},
		ServiceCategories: entity.ServiceCategorySelection{
			entity.CategoryGroupAdultOnlyMassage: {"sensualMassage": true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Alpha Wellness", resp.BusinessName)
	assert.Equal(t, "Dallas", resp.Address.City)
	assert.Equal(t, []float64{1, 1}, resp.Coordinates)
	assert.True(t, resp.IsAdultServiceProvider)
	assert.True(t, resp.ServiceCategories[entity.CategoryGroupAdultOnlyMassage]["sensualMassage"])
	assert.Contains(t, resp.ServiceCategories, entity.CategoryGroupBeauty)
	assert.Equal(t, 1, f.audit.count(entity.AuditActionProviderUpdate))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProviderUsecase_UpdateNotificationPreferences(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", nil, nil)
	ctx := asUser(p.UserID, entity.RoleIDProvider)

	t.Run("merges fields", func(t *testing.T) {
		expectCommittedTx(f.mock)
		prefs, err := f.usecase.UpdateNotificationPreferences(ctx, &dto.UpdateProviderNotificationsRequest{
			SMS:   json.RawMessage(`{"newReviews": true, "quietHours": {"enabled": true}}`),
			Email: json.RawMessage(`{"enabled": false}`),
		})
		require.NoError(t, err)
		assert.True(t, prefs.SMS.Enabled)
		assert.True(t, prefs.SMS.NewReviews)
		assert.True(t, prefs.SMS.QuietHours.Enabled)
		assert.Equal(t, "22:00", prefs.SMS.QuietHours.Start)
		assert.False(t, prefs.Email.Enabled)
		assert.True(t, f.providers.get(p.ID).NotificationPreferences.Data().SMS.NewReviews)
	})

	t.Run("rejects malformed quiet hours", func(t *testing.T) {
		expectRolledBackTx(f.mock)
		_, err := f.usecase.UpdateNotificationPreferences(ctx, &dto.UpdateProviderNotificationsRequest{
			SMS: json.RawMessage(`{"quietHours": {"start": "25:00"}}`),
		})
		assert.True(t, apperror.IsType(err, apperror.TypeValidation))
		assert.Equal(t, "22:00", f.providers.get(p.ID).NotificationPreferences.Data().SMS.QuietHours.Start)
	})

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProviderUsecase_GetSubscription(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", nil, nil)

	sub, err := f.usecase.GetSubscription(asUser(p.UserID, entity.RoleIDProvider))
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionTrial, sub.Status)
	assert.Greater(t, sub.DaysRemaining, 0)
}

func TestProviderUsecase_GetStats(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", nil, nil)
	p.Rating, p.ReviewCount = 4.5, 2

	seed := func(status entity.BookingStatus, price int64, updated time.Time) {
		f.bookings.add(&entity.Booking{
			CustomerID: f.customer.ID,
			ProviderID: p.ID,
			Status:     status,
			TotalPrice: decimal.NewFromInt(price),
			UpdatedAt:  updated,
		})
	}
	seed(entity.BookingStatusCompleted, 75, f.now.Add(-24*time.Hour))
	seed(entity.BookingStatusCompleted, 50, f.now.Add(-40*24*time.Hour))
	seed(entity.BookingStatusPending, 80, f.now)
	seed(entity.BookingStatusCancelled, 90, f.now)

	stats, err := f.usecase.GetStats(asUser(p.UserID, entity.RoleIDProvider))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.CompletedServices)
	assert.Equal(t, int64(1), stats.PendingRequests)
	assert.True(t, stats.MonthlyEarnings.Equal(decimal.NewFromInt(75)), "got %s", stats.MonthlyEarnings)
	assert.Equal(t, 4.5, stats.Rating)
	assert.Equal(t, int64(2), stats.ReviewCount)
}

func TestProviderUsecase_AddReview(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", nil, nil)
	ctx := asUser(f.customer.ID, entity.RoleIDCustomer)
	expectCommittedTx(f.mock)

	require.NoError(t, f.usecase.AddReview(ctx, p.ID, &dto.CreateReviewRequest{Rating: 4, Text: "Great"}))

	stored := f.providers.get(p.ID)
	assert.Equal(t, 4.0, stored.Rating)
	assert.Equal(t, int64(1), stored.ReviewCount)
	assert.Empty(t, f.notifier.sent)

	expectRolledBackTx(f.mock)
	err := f.usecase.AddReview(ctx, p.ID, &dto.CreateReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, int64(1), f.providers.get(p.ID).ReviewCount)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProviderUsecase_AddReviewRejections(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", nil, nil)

	expectRolledBackTx(f.mock)
	err := f.usecase.AddReview(asUser(p.UserID, entity.RoleIDProvider), p.ID, &dto.CreateReviewRequest{Rating: 5})
	assert.True(t, apperror.IsType(err, apperror.TypeValidation))

	expectRolledBackTx(f.mock)
	err = f.usecase.AddReview(asUser(f.customer.ID, entity.RoleIDCustomer), uuid.New(), &dto.CreateReviewRequest{Rating: 5})
	assert.True(t, apperror.IsType(err, apperror.TypeNotFound))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProviderUsecase_AddReviewNotifiesWhenEnabled(t *testing.T) {
	f := newProviderFixture(t)
	p := f.seedProvider("alpha", nil, nil)
	prefs := p.NotificationPreferences.Data()
	prefs.Email.NewReviews = true
	p.NotificationPreferences = datatypes.NewJSONType(prefs)
	expectCommittedTx(f.mock)

	require.NoError(t, f.usecase.AddReview(asUser(f.customer.ID, entity.RoleIDCustomer), p.ID, &dto.CreateReviewRequest{Rating: 5}))

	sent := f.notifier.to(service.RecipientProvider)
	require.Len(t, sent, 1)
	assert.Equal(t, service.EventProviderReviewed, sent[0].Event)
	assert.Equal(t, service.ChannelEmail, sent[0].Channel)
	assert.Equal(t, p.ID, sent[0].RecipientID)
	assert.Equal(t, f.now, sent[0].CreatedAt)
}
