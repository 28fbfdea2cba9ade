// api/service/zone_service.go
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

// IZoneService defines the interface for zone operations.
type IZoneService interface {
	CreateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error)
	UpdateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error)
	DeleteZone(ctx context.Context, id uint, sc scope.Context) error
	GetZone(ctx context.Context, id uint, sc scope.Context) (*model.Zone, error)
	SearchZones(ctx context.Context, criteria model.ZoneSearchCriteria, sc scope.Context) ([]*model.Zone, error)
}

// ZoneStore is the data access the service needs; *dao.ZoneDAO satisfies it.
type ZoneStore interface {
	CreateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error)
	UpdateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error)
	DeleteZone(ctx context.Context, id uint, sc scope.Context) error
	GetZone(ctx context.Context, id uint, sc scope.Context) (*model.Zone, error)
	SearchZones(ctx context.Context, criteria model.ZoneSearchCriteria, sc scope.Context) ([]*model.Zone, error)
	ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error)
}

type ZoneService struct {
	zoneDAO         ZoneStore
	caches          *cache.Caches
	auditService    audit.Service
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IZoneService = &ZoneService{}

func NewZoneService(
	zoneDAO ZoneStore,
	caches *cache.Caches,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *ZoneService {
	service := &ZoneService{
		zoneDAO:         zoneDAO,
		caches:          caches,
		auditService:    auditService,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("zones.created", service.handleZoneEvent)
	eventBus.Subscribe("zones.updated", service.handleZoneEvent)
	eventBus.Subscribe("zones.deleted", service.handleZoneEvent)

	return service
}

func (s *ZoneService) handleZoneEvent(ctx context.Context, event util.Event) error {
	switch payload := event.Payload.(type) {
	case model.Zone:
		verb := event.Type[len("zones."):]
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceZones), verb, payload.ID)
	case uint:
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceZones), "deleted", payload)
	default:
		return fmt.Errorf("unexpected zone event payload %T", event.Payload)
	}
}

func (s *ZoneService) CreateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error) {
	if !sc.Capabilities.ManageZones {
		recordDenial(ctx, s.auditService, sc, "CREATE_ZONE", scope.ResourceZones, 0)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if err := s.validationUtil.ValidateZone(zone); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidZoneData, err)
	}

	created, err := s.zoneDAO.CreateZone(ctx, zone, sc)
	if err != nil {
		logger.Error("Error creating zone", zap.Error(err), zap.Uint("callerID", sc.UserID))
		return nil, err
	}

	s.caches.InvalidateResource(scope.ResourceZones)
	s.eventBus.Publish(ctx, "zones.created", *created)
	return created, nil
}

func (s *ZoneService) UpdateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error) {
	if !sc.Capabilities.ManageZones {
		recordDenial(ctx, s.auditService, sc, "UPDATE_ZONE", scope.ResourceZones, zone.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if err := s.validationUtil.ValidateZone(zone); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidZoneData, err)
	}

	updated, err := s.zoneDAO.UpdateZone(ctx, zone, sc)
	if err != nil {
		return nil, err
	}

	s.caches.InvalidateResource(scope.ResourceZones)
	s.eventBus.Publish(ctx, "zones.updated", *updated)
	return updated, nil
}

func (s *ZoneService) DeleteZone(ctx context.Context, id uint, sc scope.Context) error {
	if !sc.Capabilities.ManageZones {
		recordDenial(ctx, s.auditService, sc, "DELETE_ZONE", scope.ResourceZones, id)
		return gurukul_errors.ErrScopeForbidden
	}

	if err := s.zoneDAO.DeleteZone(ctx, id, sc); err != nil {
		return err
	}

	s.caches.InvalidateResource(scope.ResourceZones)
	s.eventBus.Publish(ctx, "zones.deleted", id)
	return nil
}

func (s *ZoneService) GetZone(ctx context.Context, id uint, sc scope.Context) (*model.Zone, error) {
	key := cache.Key(cache.Op(scope.ResourceZones, "get"), map[string]uint{"id": id}, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) (*model.Zone, error) {
		return s.zoneDAO.GetZone(ctx, id, sc)
	})
}

func (s *ZoneService) SearchZones(ctx context.Context, criteria model.ZoneSearchCriteria, sc scope.Context) ([]*model.Zone, error) {
	key := cache.Key(cache.Op(scope.ResourceZones, "search"), criteria, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) ([]*model.Zone, error) {
		return s.zoneDAO.SearchZones(ctx, criteria, sc)
	})
}
