package usecase

import (
	"context"

	"service-marketplace/internal/converter"
	"service-marketplace/internal/delivery/dto"
	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/domain/repository"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrServiceNotFound = apperror.NotFound("Service not found")
	ErrNotServiceOwner = apperror.Forbidden("Not authorized to modify this service")
	ErrInvalidCategory = apperror.Validation("Unknown service category")
	ErrNegativePrice   = apperror.Validation("Price must not be negative")
)

type ServiceUsecase interface {
	GetServices(ctx context.Context, req *dto.ServiceListRequest) ([]dto.ServiceResponse, int64, error)
	GetService(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
	GetProviderServices(ctx context.Context) ([]dto.ServiceResponse, error)
	CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	UpdateService(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
}

type serviceUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	serviceRepo  repository.ServiceRepository
	providerRepo repository.ProviderRepository
	audit        service.AuditService
}

func NewServiceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	serviceRepo repository.ServiceRepository,
	providerRepo repository.ProviderRepository,
	audit service.AuditService,
) ServiceUsecase {
	return &serviceUsecase{
		db:           db,
		log:          log,
		serviceRepo:  serviceRepo,
		providerRepo: providerRepo,
		audit:        audit,
	}
}

// GetServices lists active services only.
func (u *serviceUsecase) GetServices(ctx context.Context, req *dto.ServiceListRequest) ([]dto.ServiceResponse, int64, error) {
	active := true
	filter := entity.ServiceFilter{
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		MinDuration: req.MinDuration,
		MaxDuration: req.MaxDuration,
		AdultOnly:   req.AdultOnly,
		IsActive:    &active,
	}
	filter.Page, filter.Limit = NormalizePage(req.Page, req.Limit)

	if req.Category != "" {
		category := entity.Category(req.Category)
		if !category.IsValid() {
			return nil, 0, ErrInvalidCategory
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

	services, total, err := u.serviceRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find services: %+v", err)
		return nil, 0, err
	}

	return converter.ServicesToResponses(services), total, nil
}

func (u *serviceUsecase) GetService(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return converter.ServiceToResponse(svc), nil
}

func (u *serviceUsecase) ownProvider(ctx context.Context, db *gorm.DB) (*entity.Provider, error) {
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

func (u *serviceUsecase) GetProviderServices(ctx context.Context) ([]dto.ServiceResponse, error) {
	db := u.db.WithContext(ctx)
	provider, err := u.ownProvider(ctx, db)
	if err != nil {
		return nil, err
	}

	services, err := u.serviceRepo.FindByProviderID(db, provider.ID)
	if err != nil {
		u.log.Warnf("Failed to find services of provider %s: %+v", provider.ID, err)
		return nil, err
	}
	return converter.ServicesToResponses(services), nil
}

func (u *serviceUsecase) CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	svc := &entity.Service{
		Name:                  req.Name,
		Description:           req.Description,
		Duration:              req.Duration,
		AcceptsUrgentRequests: true,
		MaxTravelDistance:     entity.DefaultMaxTravelDistance,
		Availability:          datatypes.NewJSONType(entity.DefaultServiceAvailability()),
		IsActive:              true,
	}
	if !svc.ApplyCategory(entity.Category(req.Category)) {
		return nil, ErrInvalidCategory
	}
	svc.ApplyPrice(req.Price)
	if req.AcceptsUrgentRequests != nil {
		svc.AcceptsUrgentRequests = *req.AcceptsUrgentRequests
	}
	if req.MaxTravelDistance != nil {
		svc.MaxTravelDistance = *req.MaxTravelDistance
	}
	if req.Availability != nil {
		availability, ok := converter.ServiceAvailabilityFromRequest(req.Availability)
		if !ok {
			return nil, apperror.Validation("Availability keys must be weekday names")
		}
		svc.Availability = datatypes.NewJSONType(availability)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	provider, err := u.ownProvider(ctx, tx)
	if err != nil {
		return nil, err
	}
	svc.ProviderID = provider.ID

	if err := u.serviceRepo.Create(tx, svc); err != nil {
		u.log.Warnf("Failed to create service: %+v", err)
		return nil, err
	}

	if err := u.audit.LogCreate(ctx, tx, &provider.UserID, entity.AuditActionServiceCreate, entity.AuditEntityService, svc.ID.String(), serviceAuditView(svc)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ServiceToResponse(svc), nil
}

// ownedService loads the service and checks it belongs to the calling provider.
func (u *serviceUsecase) ownedService(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Service, *entity.Provider, error) {
	provider, err := u.ownProvider(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	svc, err := u.serviceRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", id, err)
		return nil, nil, err
	}
	if svc == nil {
		return nil, nil, ErrServiceNotFound
	}
	if svc.ProviderID != provider.ID {
		return nil, nil, ErrNotServiceOwner
	}
	return svc, provider, nil
}

func (u *serviceUsecase) UpdateService(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	svc, provider, err := u.ownedService(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	old := serviceAuditView(svc)

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Duration != nil {
		svc.Duration = *req.Duration
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		svc.ApplyPrice(*req.Price)
	}
	if req.Category != nil {
		if !svc.ApplyCategory(entity.Category(*req.Category)) {
			return nil, ErrInvalidCategory
		}
	}
	if req.AcceptsUrgentRequests != nil {
		svc.AcceptsUrgentRequests = *req.AcceptsUrgentRequests
	}
	if req.MaxTravelDistance != nil {
		svc.MaxTravelDistance = *req.MaxTravelDistance
	}
	if req.Availability != nil {
		availability, ok := converter.ServiceAvailabilityFromRequest(req.Availability)
		if !ok {
			return nil, apperror.Validation("Availability keys must be weekday names")
		}
		svc.Availability = datatypes.NewJSONType(availability)
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := u.serviceRepo.Update(tx, svc); err != nil {
		u.log.Warnf("Failed to update service %s: %+v", id, err)
		return nil, err
	}

	if err := u.audit.LogUpdate(ctx, tx, &provider.UserID, entity.AuditActionServiceUpdate, entity.AuditEntityService, id.String(), old, serviceAuditView(svc)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ServiceToResponse(svc), nil
}

// DeleteService removes the service. Existing bookings keep their snapshot.
func (u *serviceUsecase) DeleteService(ctx context.Context, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	svc, provider, err := u.ownedService(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := u.serviceRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete service %s: %+v", id, err)
		return err
	}

	if err := u.audit.LogDelete(ctx, tx, &provider.UserID, entity.AuditActionServiceDelete, entity.AuditEntityService, id.String(), serviceAuditView(svc)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

func serviceAuditView(s *entity.Service) map[string]interface{} {
	return map[string]interface{}{
		"name":      s.Name,
		"category":  s.Category,
		"duration":  s.Duration,
		"price":     s.Price,
		"is_active": s.IsActive,
	}
}
