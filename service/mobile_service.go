// api/service/mobile_service.go
package service

import (
	"context"

	"github.com/gurukul-labs/gurukul/api/cache"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

// IMobileService is the learner-facing read surface. Everything here is
// read-only and served from the long-TTL public tier; the rulePublic scope
// entries keep it to active rows of the caller's own institute.
type IMobileService interface {
	ListCourses(ctx context.Context, criteria model.CourseSearchCriteria, sc scope.Context) ([]*model.Course, error)
	ListVideos(ctx context.Context, criteria model.VideoSearchCriteria, sc scope.Context) ([]*model.Video, error)
	Profile(ctx context.Context, sc scope.Context) (*model.User, error)
}

type MobileService struct {
	userDAO   UserStore
	courseDAO CourseStore
	videoDAO  VideoStore
	caches    *cache.Caches
}

var _ IMobileService = &MobileService{}

func NewMobileService(userDAO UserStore, courseDAO CourseStore, videoDAO VideoStore, caches *cache.Caches) *MobileService {
	return &MobileService{
		userDAO:   userDAO,
		courseDAO: courseDAO,
		videoDAO:  videoDAO,
		caches:    caches,
	}
}

func (s *MobileService) ListCourses(ctx context.Context, criteria model.CourseSearchCriteria, sc scope.Context) ([]*model.Course, error) {
	err := scope.CheckFilters(scope.ResourceCourses, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})
	if err != nil {
		return nil, err
	}

	key := cache.Key(cache.Op(scope.ResourceCourses, "mobile"), criteria, sc)
	return fromCache(ctx, s.caches.Public, key, func(ctx context.Context) ([]*model.Course, error) {
		return s.courseDAO.SearchCourses(ctx, criteria, sc)
	})
}

func (s *MobileService) ListVideos(ctx context.Context, criteria model.VideoSearchCriteria, sc scope.Context) ([]*model.Video, error) {
	err := scope.CheckFilters(scope.ResourceVideos, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})
	if err != nil {
		return nil, err
	}

	key := cache.Key(cache.Op(scope.ResourceVideos, "mobile"), criteria, sc)
	return fromCache(ctx, s.caches.Public, key, func(ctx context.Context) ([]*model.Video, error) {
		return s.videoDAO.SearchVideos(ctx, criteria, sc)
	})
}

// Profile returns the caller's own user row. The users scope rule for
// learner roles is ruleSelfRow, so the scoped get can only ever see it.
func (s *MobileService) Profile(ctx context.Context, sc scope.Context) (*model.User, error) {
	key := cache.Key(cache.Op(scope.ResourceUsers, "profile"), map[string]uint{"id": sc.UserID}, sc)
	return fromCache(ctx, s.caches.Public, key, func(ctx context.Context) (*model.User, error) {
		return s.userDAO.GetUser(ctx, sc.UserID, sc)
	})
}
