package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"service-marketplace/internal/converter"
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/domain/repository"
	"service-marketplace/internal/infrastructure/geocoding"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/geo"
	"service-marketplace/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	earningsWindow = 30 * 24 * time.Hour
	defaultCountry = "USA"
)

var (
	ErrProviderProfileNotFound = apperror.NotFound("Provider profile not found")
	ErrProviderExists          = apperror.Validation("Provider profile already exists for this user")
	ErrAlreadyReviewed         = apperror.Validation("Provider already reviewed")
)

type ProviderUsecase interface {
	CreateProvider(ctx context.Context, req *dto.CreateProviderRequest) (*dto.ProviderOnboardingResponse, error)
	GetProviders(ctx context.Context, req *dto.ProviderListRequest) ([]dto.ProviderResponse, int64, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*dto.ProviderResponse, error)
	GetProfile(ctx context.Context) (*dto.ProviderResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProviderRequest) (*dto.ProviderResponse, error)
	UpdateNotificationPreferences(ctx context.Context, req *dto.UpdateProviderNotificationsRequest) (*entity.ProviderNotificationPreferences, error)
	GetSubscription(ctx context.Context) (*dto.SubscriptionResponse, error)
	GetStats(ctx context.Context) (*dto.ProviderDashboardStats, error)
	AddReview(ctx context.Context, providerID uuid.UUID, req *dto.CreateReviewRequest) error
}

type providerUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	providerRepo repository.ProviderRepository
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	bookingRepo  repository.BookingRepository
	geocoder     geocoding.Geocoder
	tokenStore   service.TokenStore
	tokenIssuer  *TokenIssuer
	audit        service.AuditService
	notifier     service.Notifier
	now          func() time.Time
}

func NewProviderUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	providerRepo repository.ProviderRepository,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	bookingRepo repository.BookingRepository,
	geocoder geocoding.Geocoder,
	tokenStore service.TokenStore,
	tokenIssuer *TokenIssuer,
	audit service.AuditService,
	notifier service.Notifier,
) ProviderUsecase {
	return &providerUsecase{
		db:           db,
		log:          log,
		providerRepo: providerRepo,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		bookingRepo:  bookingRepo,
		geocoder:     geocoder,
		tokenStore:   tokenStore,
		tokenIssuer:  tokenIssuer,
		audit:        audit,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateProvider turns the calling customer into a provider. The user's role
// changes in the same transaction as the profile insert, and a fresh token
// pair carrying the new role is returned.
func (u *providerUsecase) CreateProvider(ctx context.Context, req *dto.CreateProviderRequest) (*dto.ProviderOnboardingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("Not authorized")
	}

	categories := entity.DefaultServiceCategories()
	if req.ServiceCategories != nil {
		if err := validateCategorySelection(req.ServiceCategories); err != nil {
			return nil, err
		}
		categories = req.ServiceCategories
	}

	availability := entity.DefaultWeeklyAvailability()
	if req.Availability != nil {
		parsed, ok := converter.WeeklyAvailabilityFromRequest(req.Availability)
		if !ok {
			return nil, apperror.Validation("Availability keys must be weekday names")
		}
		availability = parsed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := u.providerRepo.FindByUserID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find provider for user %s: %+v", userID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrProviderExists
	}

	contact := converter.ContactInfoFromRequest(req.ContactInfo)
	notifyEmail := contact.Email
	if notifyEmail == "" {
		notifyEmail = user.Email
	}

	address := converter.AddressFromRequest(req.Address)
	provider := &entity.Provider{
		UserID:                  userID,
		BusinessName:            req.BusinessName,
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Description:             req.Description,
		Address:                 address,
		Country:                 defaultCountry,
		Location:                u.locate(ctx, req.Address),
		ContactInfo:             contact,
		ServiceCategories:       datatypes.NewJSONType(categories),
		Availability:            datatypes.NewJSONType(availability),
		NotificationPreferences: datatypes.NewJSONType(entity.DefaultProviderNotificationPreferences(contact.Phone, notifyEmail)),
		Subscription:            entity.NewTrialSubscription(u.now()),
		IsAdultServiceProvider:  categories.OffersAdultServices(),
	}

	if err := u.providerRepo.Create(tx, provider); err != nil {
		if isDuplicateKeyError(err, "user_id") {
			return nil, ErrProviderExists
		}
		u.log.Warnf("Failed to create provider: %+v", err)
		return nil, err
	}

	role, err := u.roleRepo.FindByName(tx, entity.RoleProvider)
	if err != nil {
		u.log.Warnf("Failed to find provider role: %+v", err)
		return nil, err
	}
	if role == nil {
		u.log.Errorf("Role %q is not seeded", entity.RoleProvider)
		return nil, ErrRoleNotFound
	}
	if err := u.userRepo.UpdateRole(tx, userID, role.ID); err != nil {
		u.log.Warnf("Failed to update role of user %s: %+v", userID, err)
		return nil, err
	}

	if err := u.audit.LogCreate(ctx, tx, &userID, entity.AuditActionProviderCreate, entity.AuditEntityProvider, provider.ID.String(), provider); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// tokens signed with the customer role are no longer valid
	if err := u.tokenStore.RevokeAll(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke tokens of user %s: %+v", userID, err)
	}

	user.RoleID = role.ID
	user.Role = *role
	auth, err := u.tokenIssuer.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.ProviderOnboardingResponse{
		Provider: converter.ProviderToOwnerResponse(provider, u.now()),
		Auth:     auth,
	}, nil
}

// locate geocodes the address. Lookup failures leave the provider without
// coordinates; it is then excluded from distance searches.
func (u *providerUsecase) locate(ctx context.Context, req *dto.AddressRequest) entity.Coordinates {
	if req == nil {
		return entity.Coordinates{}
	}
	point, err := u.geocoder.Geocode(ctx, formatAddress(req))
	if err != nil {
		u.log.Warnf("Failed to geocode provider address: %+v", err)
		return entity.Coordinates{}
	}
	return entity.CoordinatesFromPoint(point)
}

func formatAddress(a *dto.AddressRequest) string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.ZipCode))
}

// validateCategorySelection rejects unknown groups and categories filed
// under a group they do not belong to.
func validateCategorySelection(selection entity.ServiceCategorySelection) error {
	for group, categories := range selection {
		if !group.IsValid() {
			return apperror.Validation(fmt.Sprintf("Unknown category group %q", group))
		}
		for category := range categories {
			actual, ok := entity.CategoryGroupOf(category)
			if !ok || actual != group {
				return apperror.Validation(fmt.Sprintf("Unknown category %q in group %q", category, group))
			}
		}
	}
	return nil
}

// GetProviders filters in the database by category, adult flag and day, then
// by distance in memory. Distance results are ordered nearest first.
func (u *providerUsecase) GetProviders(ctx context.Context, req *dto.ProviderListRequest) ([]dto.ProviderResponse, int64, error) {
	filter := entity.ProviderFilter{AdultOnly: req.AdultOnly}

	if req.Category != "" {
		category := entity.Category(req.Category)
		if !category.IsValid() {
			return nil, 0, apperror.Validation("Unknown category")
		}
		filter.Category = category
	}
	if req.CategoryGroup != "" {
		group := entity.CategoryGroup(req.CategoryGroup)
		if !group.IsValid() {
			return nil, 0, apperror.Validation("Unknown category group")
		}
		filter.CategoryGroup = group
	}
	if day := strings.ToLower(req.Day); entity.IsWeekday(day) {
		filter.Day = day
	}

	providers, err := u.providerRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find providers: %+v", err)
		return nil, 0, err
	}

	var distances map[uuid.UUID]float64
	if req.Latitude != nil && req.Longitude != nil && req.Distance != nil {
		origin := &geo.Point{Longitude: *req.Longitude, Latitude: *req.Latitude}
		providers, distances = withinRadius(providers, origin, geo.KilometersToMiles(*req.Distance))
	}

	total := int64(len(providers))
	page, limit := NormalizePage(req.Page, req.Limit)
	start := (page - 1) * limit
	if start > len(providers) {
		start = len(providers)
	}
	end := start + limit
	if end > len(providers) {
		end = len(providers)
	}

	responses := converter.ProvidersToResponses(providers[start:end])
	if distances != nil {
		for i := range responses {
			d := distances[responses[i].ID]
			responses[i].Distance = &d
		}
	}

	return responses, total, nil
}

func withinRadius(providers []entity.Provider, origin *geo.Point, radiusMiles float64) ([]entity.Provider, map[uuid.UUID]float64) {
	distances := make(map[uuid.UUID]float64)
	nearby := make([]entity.Provider, 0, len(providers))
	for _, p := range providers {
		point := p.Location.Point()
		if point == nil {
			continue
		}
		d := geo.DistanceMiles(origin, point)
		if d <= radiusMiles {
			distances[p.ID] = d
			nearby = append(nearby, p)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return distances[nearby[i].ID] < distances[nearby[j].ID]
	})
	return nearby, distances
}

func (u *providerUsecase) GetProvider(ctx context.Context, id uuid.UUID) (*dto.ProviderResponse, error) {
	provider, err := u.providerRepo.FindDetailByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find provider %s: %+v", id, err)
		return nil, err
	}
	if provider == nil {
		return nil, apperror.NotFound("Provider not found")
	}
	return converter.ProviderToResponse(provider), nil
}

func (u *providerUsecase) ownProvider(ctx context.Context, db *gorm.DB) (*entity.Provider, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("Not authorized")
	}
	provider, err := u.providerRepo.FindByUserID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find provider for user %s: %+v", userID, err)
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderProfileNotFound
	}
	return provider, nil
}

func (u *providerUsecase) GetProfile(ctx context.Context) (*dto.ProviderResponse, error) {
	db := u.db.WithContext(ctx)
	own, err := u.ownProvider(ctx, db)
	if err != nil {
		return nil, err
	}

	provider, err := u.providerRepo.FindDetailByID(db, own.ID)
	if err != nil {
		u.log.Warnf("Failed to find provider %s: %+v", own.ID, err)
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderProfileNotFound
	}
	return converter.ProviderToOwnerResponse(provider, u.now()), nil
}

// UpdateProfile changes only the fields present in req. A new address is
// geocoded again; if that fails the previous coordinates are kept.
func (u *providerUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateProviderRequest) (*dto.ProviderResponse, error) {
	if req.ServiceCategories != nil {
		if err := validateCategorySelection(req.ServiceCategories); err != nil {
			return nil, err
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	own, err := u.ownProvider(ctx, tx)
	if err != nil {
		return nil, err
	}
	provider, err := u.providerRepo.FindByIDForUpdate(tx, own.ID)
	if err != nil {
		u.log.Warnf("Failed to lock provider %s: %+v", own.ID, err)
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderProfileNotFound
	}
	old := *provider

	if req.BusinessName != nil {
		provider.BusinessName = *req.BusinessName
	}
	if req.FirstName != nil {
		provider.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		provider.LastName = *req.LastName
	}
	if req.Description != nil {
		provider.Description = *req.Description
	}

	if req.ContactInfo != nil {
		if req.ContactInfo.Phone != "" {
			provider.ContactInfo.Phone = req.ContactInfo.Phone
		}
		if req.ContactInfo.Email != "" {
			provider.ContactInfo.Email = req.ContactInfo.Email
		}
		if req.ContactInfo.Website != "" {
			provider.ContactInfo.Website = req.ContactInfo.Website
		}
	}

	if req.Address != nil {
		provider.Address = converter.AddressFromRequest(req.Address)
		if coords := u.locate(ctx, req.Address); coords.Point() != nil {
			provider.Location = coords
		}
	}

	if req.ServiceCategories != nil {
		merged := provider.ServiceCategories.Data()
		if merged == nil {
			merged = entity.ServiceCategorySelection{}
		}
		for group, categories := range req.ServiceCategories {
			if merged[group] == nil {
				merged[group] = map[entity.Category]bool{}
			}
			for category, offered := range categories {
				merged[group][category] = offered
			}
		}
		provider.ServiceCategories = datatypes.NewJSONType(merged)
		provider.IsAdultServiceProvider = merged.OffersAdultServices()
	}

	if req.Availability != nil {
		availability, ok := converter.WeeklyAvailabilityFromRequest(req.Availability)
		if !ok {
			return nil, apperror.Validation("Availability keys must be weekday names")
		}
		provider.Availability = datatypes.NewJSONType(availability)
	}

	if err := u.providerRepo.Update(tx, provider); err != nil {
		u.log.Warnf("Failed to update provider %s: %+v", provider.ID, err)
		return nil, err
	}

	if err := u.audit.LogUpdate(ctx, tx, &provider.UserID, entity.AuditActionProviderUpdate, entity.AuditEntityProvider, provider.ID.String(),
		providerAuditView(&old), providerAuditView(provider)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ProviderToOwnerResponse(provider, u.now()), nil
}

func providerAuditView(p *entity.Provider) map[string]interface{} {
	return map[string]interface{}{
		"business_name":             p.BusinessName,
		"address":                   p.Address,
		"contact_info":              p.ContactInfo,
		"is_adult_service_provider": p.IsAdultServiceProvider,
	}
}

// UpdateNotificationPreferences merges the sms and email sections into the
// stored preferences. Absent fields keep their value.
func (u *providerUsecase) UpdateNotificationPreferences(ctx context.Context, req *dto.UpdateProviderNotificationsRequest) (*entity.ProviderNotificationPreferences, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	provider, err := u.ownProvider(ctx, tx)
	if err != nil {
		return nil, err
	}

	prefs := provider.NotificationPreferences.Data()
	if len(req.SMS) > 0 {
		if err := json.Unmarshal(req.SMS, &prefs.SMS); err != nil {
			return nil, apperror.Validation("Invalid sms preferences")
		}
	}
	if len(req.Email) > 0 {
		if err := json.Unmarshal(req.Email, &prefs.Email); err != nil {
			return nil, apperror.Validation("Invalid email preferences")
		}
	}

	quiet := prefs.SMS.QuietHours
	if !validator.IsClockTime(quiet.Start) || !validator.IsClockTime(quiet.End) {
		return nil, apperror.Validation("Quiet hours must be in HH:MM format")
	}

	provider.NotificationPreferences = datatypes.NewJSONType(prefs)
	if err := u.providerRepo.Update(tx, provider); err != nil {
		u.log.Warnf("Failed to update notification preferences of provider %s: %+v", provider.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &prefs, nil
}

func (u *providerUsecase) GetSubscription(ctx context.Context) (*dto.SubscriptionResponse, error) {
	provider, err := u.ownProvider(ctx, u.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return converter.SubscriptionToResponse(provider.Subscription, u.now()), nil
}

// GetStats runs the three aggregate queries concurrently.
func (u *providerUsecase) GetStats(ctx context.Context) (*dto.ProviderDashboardStats, error) {
	provider, err := u.ownProvider(ctx, u.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var (
		completed int64
		pending   int64
		earnings  decimal.Decimal
	)
	since := u.now().Add(-earningsWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := u.bookingRepo.CountByProviderAndStatus(u.db.WithContext(gctx), provider.ID, entity.BookingStatusCompleted)
		completed = n
		return err
	})
	g.Go(func() error {
		n, err := u.bookingRepo.CountByProviderAndStatus(u.db.WithContext(gctx), provider.ID, entity.BookingStatusPending)
		pending = n
		return err
	})
	g.Go(func() error {
		sum, err := u.bookingRepo.SumCompletedEarningsSince(u.db.WithContext(gctx), provider.ID, since)
		earnings = sum
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to compute stats of provider %s: %+v", provider.ID, err)
		return nil, err
	}

	return &dto.ProviderDashboardStats{
		CompletedServices: completed,
		PendingRequests:   pending,
		MonthlyEarnings:   earnings,
		Rating:            provider.Rating,
		ReviewCount:       provider.ReviewCount,
	}, nil
}

// AddReview stores one review per user and recomputes the provider's mean
// rating while the provider row is locked.
func (u *providerUsecase) AddReview(ctx context.Context, providerID uuid.UUID, req *dto.CreateReviewRequest) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return apperror.Unauthorized("Not authorized")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	provider, err := u.providerRepo.FindByIDForUpdate(tx, providerID)
	if err != nil {
		u.log.Warnf("Failed to lock provider %s: %+v", providerID, err)
		return err
	}
	if provider == nil {
		return apperror.NotFound("Provider not found")
	}
	if provider.UserID == userID {
		return apperror.Validation("Cannot review your own provider profile")
	}

	reviewed, err := u.providerRepo.HasReviewFrom(tx, providerID, userID)
	if err != nil {
		u.log.Warnf("Failed to check reviews of provider %s: %+v", providerID, err)
		return err
	}
	if reviewed {
		return ErrAlreadyReviewed
	}

	review := &entity.ProviderReview{
		ProviderID: providerID,
		UserID:     userID,
		Rating:     req.Rating,
		Text:       req.Text,
	}
	if err := u.providerRepo.CreateReview(tx, review); err != nil {
		if isDuplicateKeyError(err, "uq_provider_reviews_provider_user") {
			return ErrAlreadyReviewed
		}
		u.log.Warnf("Failed to create review: %+v", err)
		return err
	}

	if err := u.providerRepo.UpdateRating(tx, providerID); err != nil {
		u.log.Warnf("Failed to update rating of provider %s: %+v", providerID, err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.notifyReview(provider, review)
	return nil
}

func (u *providerUsecase) notifyReview(provider *entity.Provider, review *entity.ProviderReview) {
	prefs := provider.NotificationPreferences.Data()
	var channels []service.NotificationChannel
	if prefs.SMS.Enabled && prefs.SMS.NewReviews {
		channels = append(channels, service.ChannelSMS)
	}
	if prefs.Email.Enabled && prefs.Email.NewReviews {
		channels = append(channels, service.ChannelEmail)
	}

	for _, channel := range channels {
		n := service.Notification{
			ID:            uuid.New(),
			RecipientID:   provider.ID,
			RecipientType: service.RecipientProvider,
			Channel:       channel,
			Event:         service.EventProviderReviewed,
			Payload: map[string]interface{}{
				"rating": review.Rating,
				"text":   review.Text,
			},
			CreatedAt: u.now(),
		}
		if err := u.notifier.Dispatch(n); err != nil {
			u.log.Warnf("Failed to dispatch review notification for provider %s: %+v", provider.ID, err)
		}
	}
}
