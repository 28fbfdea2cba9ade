// api/service/user_service.go
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

// IUserService defines the interface for user operations.
type IUserService interface {
	CreateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error)
	UpdateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error)
	DeleteUser(ctx context.Context, id uint, sc scope.Context) error
	BulkDeactivateUsers(ctx context.Context, req model.UserBulkDeactivateRequest, sc scope.Context) (scope.Check, error)
	GetUser(ctx context.Context, id uint, sc scope.Context) (*model.User, error)
	SearchUsers(ctx context.Context, criteria model.UserSearchCriteria, sc scope.Context) ([]*model.User, error)
}

// UserStore is the data access the service needs; *dao.UserDAO satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error)
	UpdateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error)
	DeleteUser(ctx context.Context, id uint, sc scope.Context) error
	DeactivateUsers(ctx context.Context, ids []uint, sc scope.Context) (int64, error)
	GetUser(ctx context.Context, id uint, sc scope.Context) (*model.User, error)
	SearchUsers(ctx context.Context, criteria model.UserSearchCriteria, sc scope.Context) ([]*model.User, error)
	ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error)
}

type UserService struct {
	userDAO         UserStore
	caches          *cache.Caches
	auditService    audit.Service
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
	locker          ResourceLocker
}

var _ IUserService = &UserService{}

func NewUserService(
	userDAO UserStore,
	caches *cache.Caches,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	locker ResourceLocker,
) *UserService {
	service := &UserService{
		userDAO:         userDAO,
		caches:          caches,
		auditService:    auditService,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
		locker:          locker,
	}

	eventBus.Subscribe("users.created", service.handleUserEvent)
	eventBus.Subscribe("users.updated", service.handleUserEvent)
	eventBus.Subscribe("users.deleted", service.handleUserEvent)

	return service
}

func (s *UserService) handleUserEvent(ctx context.Context, event util.Event) error {
	switch payload := event.Payload.(type) {
	case model.User:
		verb := event.Type[len("users."):]
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceUsers), verb, payload.ID)
	case uint:
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceUsers), "deleted", payload)
	default:
		return fmt.Errorf("unexpected user event payload %T", event.Payload)
	}
}

// CreateUser pins the new user to the caller's tenancy. Institute-bound
// admins can only mint users of their own institute; zonal admins must stay
// inside their zone.
func (s *UserService) CreateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error) {
	if !sc.Capabilities.ManageUsers {
		recordDenial(ctx, s.auditService, sc, "CREATE_USER", scope.ResourceUsers, 0)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if !sc.Capabilities.SeesAllRows {
		if sc.Role == scope.RoleZonalAdmin {
			if sc.ZoneID == nil || (user.ZoneID != nil && *user.ZoneID != *sc.ZoneID) {
				recordDenial(ctx, s.auditService, sc, "CREATE_USER", scope.ResourceUsers, 0)
				return nil, gurukul_errors.ErrScopeForbidden
			}
			user.ZoneID = sc.ZoneID
		} else {
			if sc.InstituteID == nil || (user.InstituteID != nil && *user.InstituteID != *sc.InstituteID) {
				recordDenial(ctx, s.auditService, sc, "CREATE_USER", scope.ResourceUsers, 0)
				return nil, gurukul_errors.ErrScopeForbidden
			}
			user.InstituteID = sc.InstituteID
			user.ZoneID = sc.ZoneID
		}
	}

	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidUserData, err)
	}

	created, err := s.userDAO.CreateUser(ctx, user, sc)
	if err != nil {
		logger.Error("Error creating user", zap.Error(err), zap.Uint("callerID", sc.UserID))
		return nil, err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "users.created", *created)
	return created, nil
}

func (s *UserService) UpdateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error) {
	// Users may edit their own row; managing other rows needs the
	// capability plus a scope check.
	if user.ID != sc.UserID && !sc.Capabilities.ManageUsers {
		recordDenial(ctx, s.auditService, sc, "UPDATE_USER", scope.ResourceUsers, user.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	check, err := s.userDAO.ValidateScope(ctx, []uint{user.ID}, sc)
	if err != nil {
		return nil, err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "UPDATE_USER", scope.ResourceUsers, user.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidUserData, err)
	}

	updated, err := s.userDAO.UpdateUser(ctx, user, sc)
	if err != nil {
		return nil, err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "users.updated", *updated)
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint, sc scope.Context) error {
	if !sc.Capabilities.ManageUsers {
		recordDenial(ctx, s.auditService, sc, "DELETE_USER", scope.ResourceUsers, id)
		return gurukul_errors.ErrScopeForbidden
	}

	check, err := s.userDAO.ValidateScope(ctx, []uint{id}, sc)
	if err != nil {
		return err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "DELETE_USER", scope.ResourceUsers, id)
		return gurukul_errors.ErrScopeForbidden
	}

	if err := s.userDAO.DeleteUser(ctx, id, sc); err != nil {
		return err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "users.deleted", id)
	return nil
}

func (s *UserService) BulkDeactivateUsers(ctx context.Context, req model.UserBulkDeactivateRequest, sc scope.Context) (scope.Check, error) {
	if !sc.Capabilities.ManageUsers {
		recordDenial(ctx, s.auditService, sc, "BULK_DEACTIVATE_USERS", scope.ResourceUsers, 0)
		return scope.Check{}, gurukul_errors.ErrScopeForbidden
	}

	locked, err := s.locker.Lock(ctx, "users:bulk_deactivate", bulkLockTTL)
	if err != nil {
		return scope.Check{}, err
	}
	if !locked {
		return scope.Check{}, gurukul_errors.ErrResourceBusy
	}
	defer func() {
		if err := s.locker.Unlock(ctx, "users:bulk_deactivate"); err != nil {
			logger.Error("Failed to release bulk deactivate lock", zap.Error(err))
		}
	}()

	check, err := s.userDAO.ValidateScope(ctx, req.IDs, sc)
	if err != nil {
		return scope.Check{}, err
	}
	if !check.AllValid() && !req.Partial {
		recordDenial(ctx, s.auditService, sc, "BULK_DEACTIVATE_USERS", scope.ResourceUsers, 0)
		return check, check.PartialError()
	}

	if len(check.ValidIDs) > 0 {
		if _, err := s.userDAO.DeactivateUsers(ctx, check.ValidIDs, sc); err != nil {
			return check, err
		}
		s.invalidate()
		s.eventBus.Publish(ctx, "users.bulk_deactivated", check.ValidIDs)
		if err := s.notificationSvc.NotifyBulkChange(ctx, string(scope.ResourceUsers), "deactivated", len(check.ValidIDs)); err != nil {
			logger.Warn("Failed to send bulk deactivate notification", zap.Error(err))
		}
	}

	return check, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint, sc scope.Context) (*model.User, error) {
	key := cache.Key(cache.Op(scope.ResourceUsers, "get"), map[string]uint{"id": id}, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) (*model.User, error) {
		return s.userDAO.GetUser(ctx, id, sc)
	})
}

func (s *UserService) SearchUsers(ctx context.Context, criteria model.UserSearchCriteria, sc scope.Context) ([]*model.User, error) {
	err := scope.CheckFilters(scope.ResourceUsers, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})
	if err != nil {
		recordDenial(ctx, s.auditService, sc, "SEARCH_USERS", scope.ResourceUsers, 0)
		return nil, err
	}

	key := cache.Key(cache.Op(scope.ResourceUsers, "search"), criteria, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) ([]*model.User, error) {
		return s.userDAO.SearchUsers(ctx, criteria, sc)
	})
}

func (s *UserService) invalidate() {
	s.caches.InvalidateResource(scope.ResourceUsers)
	s.caches.InvalidateResource(scope.ResourceInstitutes)
}
