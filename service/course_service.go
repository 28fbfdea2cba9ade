// api/service/course_service.go
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

// ICourseService defines the interface for course operations.
type ICourseService interface {
	CreateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error)
	UpdateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error)
	DeleteCourse(ctx context.Context, id uint, sc scope.Context) error
	GetCourse(ctx context.Context, id uint, sc scope.Context) (*model.Course, error)
	SearchCourses(ctx context.Context, criteria model.CourseSearchCriteria, sc scope.Context) ([]*model.Course, error)
}

// CourseStore is the data access the service needs; *dao.CourseDAO satisfies it.
type CourseStore interface {
	CreateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error)
	UpdateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error)
	DeleteCourse(ctx context.Context, id uint, sc scope.Context) error
	GetCourse(ctx context.Context, id uint, sc scope.Context) (*model.Course, error)
	SearchCourses(ctx context.Context, criteria model.CourseSearchCriteria, sc scope.Context) ([]*model.Course, error)
	ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error)
	ResolveInstitute(ctx context.Context, instituteID uint) (*uint, bool, error)
}

type CourseService struct {
	courseDAO       CourseStore
	caches          *cache.Caches
	auditService    audit.Service
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ ICourseService = &CourseService{}

func NewCourseService(
	courseDAO CourseStore,
	caches *cache.Caches,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *CourseService {
	service := &CourseService{
		courseDAO:       courseDAO,
		caches:          caches,
		auditService:    auditService,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("courses.created", service.handleCourseEvent)
	eventBus.Subscribe("courses.updated", service.handleCourseEvent)
	eventBus.Subscribe("courses.deleted", service.handleCourseEvent)

	return service
}

func (s *CourseService) handleCourseEvent(ctx context.Context, event util.Event) error {
	switch payload := event.Payload.(type) {
	case model.Course:
		verb := event.Type[len("courses."):]
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceCourses), verb, payload.ID)
	case uint:
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceCourses), "deleted", payload)
	default:
		return fmt.Errorf("unexpected course event payload %T", event.Payload)
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error) {
	if !sc.Capabilities.ManageContent {
		recordDenial(ctx, s.auditService, sc, "CREATE_COURSE", scope.ResourceCourses, 0)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	instituteID, err := resolveTargetInstitute(ctx, s.courseDAO.ResolveInstitute, sc, course.InstituteID)
	if err != nil {
		recordDenial(ctx, s.auditService, sc, "CREATE_COURSE", scope.ResourceCourses, 0)
		return nil, err
	}
	course.InstituteID = instituteID

	if err := s.validationUtil.ValidateCourse(course); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidCourseData, err)
	}

	created, err := s.courseDAO.CreateCourse(ctx, course, sc)
	if err != nil {
		logger.Error("Error creating course", zap.Error(err), zap.Uint("callerID", sc.UserID))
		return nil, err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "courses.created", *created)
	return created, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error) {
	if !sc.Capabilities.ManageContent {
		recordDenial(ctx, s.auditService, sc, "UPDATE_COURSE", scope.ResourceCourses, course.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	check, err := s.courseDAO.ValidateScope(ctx, []uint{course.ID}, sc)
	if err != nil {
		return nil, err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "UPDATE_COURSE", scope.ResourceCourses, course.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if err := s.validationUtil.ValidateCourse(course); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidCourseData, err)
	}

	updated, err := s.courseDAO.UpdateCourse(ctx, course, sc)
	if err != nil {
		return nil, err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "courses.updated", *updated)
	return updated, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, id uint, sc scope.Context) error {
	if !sc.Capabilities.ManageContent {
		recordDenial(ctx, s.auditService, sc, "DELETE_COURSE", scope.ResourceCourses, id)
		return gurukul_errors.ErrScopeForbidden
	}

	check, err := s.courseDAO.ValidateScope(ctx, []uint{id}, sc)
	if err != nil {
		return err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "DELETE_COURSE", scope.ResourceCourses, id)
		return gurukul_errors.ErrScopeForbidden
	}

	if err := s.courseDAO.DeleteCourse(ctx, id, sc); err != nil {
		return err
	}

	// Deleting a course orphans its videos' course pointers in cached
	// views, so the video namespace goes too.
	s.invalidate()
	s.caches.InvalidateResource(scope.ResourceVideos)
	s.eventBus.Publish(ctx, "courses.deleted", id)
	return nil
}

func (s *CourseService) GetCourse(ctx context.Context, id uint, sc scope.Context) (*model.Course, error) {
	key := cache.Key(cache.Op(scope.ResourceCourses, "get"), map[string]uint{"id": id}, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) (*model.Course, error) {
		return s.courseDAO.GetCourse(ctx, id, sc)
	})
}

func (s *CourseService) SearchCourses(ctx context.Context, criteria model.CourseSearchCriteria, sc scope.Context) ([]*model.Course, error) {
	err := scope.CheckFilters(scope.ResourceCourses, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})
	if err != nil {
		recordDenial(ctx, s.auditService, sc, "SEARCH_COURSES", scope.ResourceCourses, 0)
		return nil, err
	}

	key := cache.Key(cache.Op(scope.ResourceCourses, "search"), criteria, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) ([]*model.Course, error) {
		return s.courseDAO.SearchCourses(ctx, criteria, sc)
	})
}

func (s *CourseService) invalidate() {
	s.caches.InvalidateResource(scope.ResourceCourses)
	s.caches.InvalidateResource(scope.ResourceInstitutes)
}
