// api/service/services.go

// Package service holds the business logic between controllers and DAOs.
// Reads go through the cache tiers keyed by operation, criteria and caller
// scope; writes validate scope, mutate, then invalidate the resource
// namespace before returning.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/api/audit"
	"github.com/gurukul-labs/gurukul/api/cache"
	"github.com/gurukul-labs/gurukul/api/dao"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/scope"
	"github.com/gurukul-labs/gurukul/api/util"
	"gorm.io/gorm"
)

// ResourceLocker is the advisory lock guarding bulk mutations. The Redis
// implementation lives in the db package; tests use a no-op stub.
type ResourceLocker interface {
	Lock(ctx context.Context, resourceName string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, resourceName string) error
}

const bulkLockTTL = 30 * time.Second

type Services struct {
	Zone      IZoneService
	Institute IInstituteService
	User      IUserService
	Course    ICourseService
	Video     IVideoService
	Mobile    IMobileService
}

func InitializeServices(
	db *gorm.DB,
	caches *cache.Caches,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	locker ResourceLocker,
) *Services {
	zoneDAO := dao.NewZoneDAO(db, auditService)
	instituteDAO := dao.NewInstituteDAO(db, auditService)
	userDAO := dao.NewUserDAO(db, auditService)
	courseDAO := dao.NewCourseDAO(db, auditService)
	videoDAO := dao.NewVideoDAO(db, auditService)

	courseService := NewCourseService(courseDAO, caches, auditService, validationUtil, notificationSvc, eventBus)
	videoService := NewVideoService(videoDAO, caches, auditService, validationUtil, notificationSvc, eventBus, locker)

	return &Services{
		Zone:      NewZoneService(zoneDAO, caches, auditService, validationUtil, notificationSvc, eventBus),
		Institute: NewInstituteService(instituteDAO, caches, auditService, validationUtil, notificationSvc, eventBus, locker),
		User:      NewUserService(userDAO, caches, auditService, validationUtil, notificationSvc, eventBus, locker),
		Course:    courseService,
		Video:     videoService,
		Mobile:    NewMobileService(userDAO, courseDAO, videoDAO, caches),
	}
}

// fromCache runs a typed read through one cache tier. A stored value of the
// wrong shape means a key bug somewhere; recompute instead of serving it.
func fromCache[T any](ctx context.Context, c *cache.Cache, key string, producer func(context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		logger.Warn("Cached value has unexpected shape, recomputing", zap.String("key", key))
		return producer(ctx)
	}
	return typed, nil
}

// resolveTargetInstitute decides which institute a write lands in.
// Institute-bound roles always write into their own institute; a zonal
// admin may name any institute inside their zone; roles that see all rows
// must name one explicitly.
func resolveTargetInstitute(
	ctx context.Context,
	resolve func(context.Context, uint) (*uint, bool, error),
	sc scope.Context,
	requested *uint,
) (*uint, error) {
	if sc.Capabilities.SeesAllRows {
		return requested, nil
	}

	if sc.Role == scope.RoleZonalAdmin {
		if requested == nil || sc.ZoneID == nil {
			return nil, gurukul_errors.ErrScopeForbidden
		}
		zoneID, _, err := resolve(ctx, *requested)
		if err != nil {
			return nil, err
		}
		if zoneID == nil || *zoneID != *sc.ZoneID {
			return nil, gurukul_errors.ErrScopeForbidden
		}
		return requested, nil
	}

	if sc.InstituteID == nil {
		return nil, gurukul_errors.ErrScopeForbidden
	}
	if requested != nil && *requested != *sc.InstituteID {
		return nil, gurukul_errors.ErrScopeForbidden
	}
	return sc.InstituteID, nil
}

// recordDenial writes an access-denied audit entry. Denials are the
// entries worth having; failures to record them are logged and swallowed.
func recordDenial(ctx context.Context, auditService audit.Service, sc scope.Context, action string, res scope.Resource, resourceID uint) {
	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        sc.UserID,
		Role:          string(sc.Role),
		InstituteID:   sc.InstituteID,
		ZoneID:        sc.ZoneID,
		Action:        action,
		Resource:      string(res),
		ResourceID:    resourceID,
		AccessGranted: false,
	}
	if err := auditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to record denial audit entry", zap.Error(err), zap.String("action", action))
	}
}
