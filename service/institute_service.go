// api/service/institute_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/api/audit"
	"github.com/gurukul-labs/gurukul/api/cache"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
	"github.com/gurukul-labs/gurukul/api/util"
)

// IInstituteService defines the interface for institute operations.
type IInstituteService interface {
	CreateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error)
	UpdateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error)
	DeleteInstitute(ctx context.Context, id uint, sc scope.Context) error
	BulkSetStatus(ctx context.Context, req model.InstituteBulkStatusRequest, sc scope.Context) (scope.Check, error)
	GetInstitute(ctx context.Context, id uint, sc scope.Context) (*model.Institute, error)
	SearchInstitutes(ctx context.Context, criteria model.InstituteSearchCriteria, sc scope.Context) ([]*model.Institute, error)
	InstituteStats(ctx context.Context, id uint, sc scope.Context) (*model.InstituteStats, error)
}

// InstituteStore is the data access the service needs; *dao.InstituteDAO
// satisfies it.
type InstituteStore interface {
	CreateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error)
	UpdateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error)
	DeleteInstitute(ctx context.Context, id uint, sc scope.Context) error
	SetInstitutesActive(ctx context.Context, ids []uint, active bool, sc scope.Context) (int64, error)
	GetInstitute(ctx context.Context, id uint, sc scope.Context) (*model.Institute, error)
	SearchInstitutes(ctx context.Context, criteria model.InstituteSearchCriteria, sc scope.Context) ([]*model.Institute, error)
	InstituteStats(ctx context.Context, id uint) (*model.InstituteStats, error)
	ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error)
}

type InstituteService struct {
	instituteDAO    InstituteStore
	caches          *cache.Caches
	auditService    audit.Service
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
	locker          ResourceLocker
}

var _ IInstituteService = &InstituteService{}

func NewInstituteService(
	instituteDAO InstituteStore,
	caches *cache.Caches,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	locker ResourceLocker,
) *InstituteService {
	service := &InstituteService{
		instituteDAO:    instituteDAO,
		caches:          caches,
		auditService:    auditService,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
		locker:          locker,
	}

	eventBus.Subscribe("institutes.created", service.handleInstituteEvent)
	eventBus.Subscribe("institutes.updated", service.handleInstituteEvent)
	eventBus.Subscribe("institutes.deleted", service.handleInstituteEvent)

	return service
}

func (s *InstituteService) handleInstituteEvent(ctx context.Context, event util.Event) error {
	switch payload := event.Payload.(type) {
	case model.Institute:
		verb := event.Type[len("institutes."):]
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceInstitutes), verb, payload.ID)
	case uint:
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceInstitutes), "deleted", payload)
	default:
		return fmt.Errorf("unexpected institute event payload %T", event.Payload)
	}
}

// CreateInstitute is open to super admins anywhere and zonal admins inside
// their own zone.
func (s *InstituteService) CreateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error) {
	if !sc.Capabilities.ManageInstitutes {
		recordDenial(ctx, s.auditService, sc, "CREATE_INSTITUTE", scope.ResourceInstitutes, 0)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if !sc.Capabilities.SeesAllRows {
		if sc.ZoneID == nil || (institute.ZoneID != nil && *institute.ZoneID != *sc.ZoneID) {
			recordDenial(ctx, s.auditService, sc, "CREATE_INSTITUTE", scope.ResourceInstitutes, 0)
			return nil, gurukul_errors.ErrScopeForbidden
		}
		institute.ZoneID = sc.ZoneID
	}

	if err := s.validationUtil.ValidateInstitute(institute); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidInstituteData, err)
	}

	created, err := s.instituteDAO.CreateInstitute(ctx, institute, sc)
	if err != nil {
		logger.Error("Error creating institute", zap.Error(err), zap.Uint("callerID", sc.UserID))
		return nil, err
	}

	s.caches.InvalidateResource(scope.ResourceInstitutes)
	s.eventBus.Publish(ctx, "institutes.created", *created)
	return created, nil
}

func (s *InstituteService) UpdateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error) {
	if !sc.Capabilities.ManageInstitutes {
		recordDenial(ctx, s.auditService, sc, "UPDATE_INSTITUTE", scope.ResourceInstitutes, institute.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	check, err := s.instituteDAO.ValidateScope(ctx, []uint{institute.ID}, sc)
	if err != nil {
		return nil, err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "UPDATE_INSTITUTE", scope.ResourceInstitutes, institute.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if err := s.validationUtil.ValidateInstitute(institute); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidInstituteData, err)
	}

	updated, err := s.instituteDAO.UpdateInstitute(ctx, institute, sc)
	if err != nil {
		return nil, err
	}

	s.caches.InvalidateResource(scope.ResourceInstitutes)
	s.eventBus.Publish(ctx, "institutes.updated", *updated)
	return updated, nil
}

func (s *InstituteService) DeleteInstitute(ctx context.Context, id uint, sc scope.Context) error {
	// Deleting a tenant is a super-admin-only operation.
	if !sc.Capabilities.SeesAllRows {
		recordDenial(ctx, s.auditService, sc, "DELETE_INSTITUTE", scope.ResourceInstitutes, id)
		return gurukul_errors.ErrScopeForbidden
	}

	if err := s.instituteDAO.DeleteInstitute(ctx, id, sc); err != nil {
		return err
	}

	// A tenant going away touches every namespace hanging off it.
	s.caches.InvalidateResource(scope.ResourceInstitutes)
	s.caches.InvalidateResource(scope.ResourceUsers)
	s.caches.InvalidateResource(scope.ResourceCourses)
	s.caches.InvalidateResource(scope.ResourceVideos)
	s.eventBus.Publish(ctx, "institutes.deleted", id)
	return nil
}

func (s *InstituteService) BulkSetStatus(ctx context.Context, req model.InstituteBulkStatusRequest, sc scope.Context) (scope.Check, error) {
	if !sc.Capabilities.ManageInstitutes {
		recordDenial(ctx, s.auditService, sc, "BULK_INSTITUTE_STATUS", scope.ResourceInstitutes, 0)
		return scope.Check{}, gurukul_errors.ErrScopeForbidden
	}

	locked, err := s.locker.Lock(ctx, "institutes:bulk_status", bulkLockTTL)
	if err != nil {
		return scope.Check{}, err
	}
	if !locked {
		return scope.Check{}, gurukul_errors.ErrResourceBusy
	}
	defer func() {
		if err := s.locker.Unlock(ctx, "institutes:bulk_status"); err != nil {
			logger.Error("Failed to release bulk status lock", zap.Error(err))
		}
	}()

	check, err := s.instituteDAO.ValidateScope(ctx, req.IDs, sc)
	if err != nil {
		return scope.Check{}, err
	}
	if !check.AllValid() && !req.Partial {
		recordDenial(ctx, s.auditService, sc, "BULK_INSTITUTE_STATUS", scope.ResourceInstitutes, 0)
		return check, check.PartialError()
	}

	if len(check.ValidIDs) > 0 {
		if _, err := s.instituteDAO.SetInstitutesActive(ctx, check.ValidIDs, req.Active, sc); err != nil {
			return check, err
		}
		// Active flips change what the public tier may serve for the
		// tenant's content, so the content namespaces go too.
		s.caches.InvalidateResource(scope.ResourceInstitutes)
		s.caches.InvalidateResource(scope.ResourceCourses)
		s.caches.InvalidateResource(scope.ResourceVideos)
		s.eventBus.Publish(ctx, "institutes.bulk_status", check.ValidIDs)
		if err := s.notificationSvc.NotifyBulkChange(ctx, string(scope.ResourceInstitutes), "updated", len(check.ValidIDs)); err != nil {
			logger.Warn("Failed to send bulk status notification", zap.Error(err))
		}
	}

	return check, nil
}

func (s *InstituteService) GetInstitute(ctx context.Context, id uint, sc scope.Context) (*model.Institute, error) {
	key := cache.Key(cache.Op(scope.ResourceInstitutes, "get"), map[string]uint{"id": id}, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) (*model.Institute, error) {
		return s.instituteDAO.GetInstitute(ctx, id, sc)
	})
}

func (s *InstituteService) SearchInstitutes(ctx context.Context, criteria model.InstituteSearchCriteria, sc scope.Context) ([]*model.Institute, error) {
	err := scope.CheckFilters(scope.ResourceInstitutes, sc, scope.Filters{
		ZoneID: criteria.ZoneID,
	})
	if err != nil {
		recordDenial(ctx, s.auditService, sc, "SEARCH_INSTITUTES", scope.ResourceInstitutes, 0)
		return nil, err
	}

	key := cache.Key(cache.Op(scope.ResourceInstitutes, "search"), criteria, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) ([]*model.Institute, error) {
		return s.instituteDAO.SearchInstitutes(ctx, criteria, sc)
	})
}

// InstituteStats serves the aggregate counts from the short-TTL stats tier.
// The caller must be able to see the institute row itself.
func (s *InstituteService) InstituteStats(ctx context.Context, id uint, sc scope.Context) (*model.InstituteStats, error) {
	if !sc.Capabilities.ViewStats {
		recordDenial(ctx, s.auditService, sc, "INSTITUTE_STATS", scope.ResourceInstitutes, id)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	check, err := s.instituteDAO.ValidateScope(ctx, []uint{id}, sc)
	if err != nil {
		return nil, err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "INSTITUTE_STATS", scope.ResourceInstitutes, id)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	key := cache.Key(cache.Op(scope.ResourceInstitutes, "stats"), map[string]uint{"id": id}, sc)
	return fromCache(ctx, s.caches.Stats, key, func(ctx context.Context) (*model.InstituteStats, error) {
		return s.instituteDAO.InstituteStats(ctx, id)
	})
}
