// api/service/video_service.go
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

// IVideoService defines the interface for video operations.
type IVideoService interface {
	CreateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error)
	UpdateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error)
	DeleteVideo(ctx context.Context, id uint, sc scope.Context) error
	BulkDeleteVideos(ctx context.Context, req model.VideoBulkDeleteRequest, sc scope.Context) (scope.Check, error)
	GetVideo(ctx context.Context, id uint, sc scope.Context) (*model.Video, error)
	SearchVideos(ctx context.Context, criteria model.VideoSearchCriteria, sc scope.Context) ([]*model.Video, error)
	VideoStats(ctx context.Context, sc scope.Context) ([]model.VideoCategoryStat, error)
}

// VideoStore is the data access the service needs; *dao.VideoDAO satisfies it.
type VideoStore interface {
	CreateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error)
	UpdateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error)
	DeleteVideo(ctx context.Context, id uint, sc scope.Context) error
	DeleteVideos(ctx context.Context, ids []uint, sc scope.Context) (int64, error)
	GetVideo(ctx context.Context, id uint, sc scope.Context) (*model.Video, error)
	SearchVideos(ctx context.Context, criteria model.VideoSearchCriteria, sc scope.Context) ([]*model.Video, error)
	CategoryStats(ctx context.Context, sc scope.Context) ([]model.VideoCategoryStat, error)
	ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error)
	ResolveInstitute(ctx context.Context, instituteID uint) (*uint, bool, error)
}

type VideoService struct {
	videoDAO        VideoStore
	caches          *cache.Caches
	auditService    audit.Service
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
	locker          ResourceLocker
}

var _ IVideoService = &VideoService{}

func NewVideoService(
	videoDAO VideoStore,
	caches *cache.Caches,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	locker ResourceLocker,
) *VideoService {
	service := &VideoService{
		videoDAO:        videoDAO,
		caches:          caches,
		auditService:    auditService,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
		locker:          locker,
	}

	eventBus.Subscribe("videos.created", service.handleVideoEvent)
	eventBus.Subscribe("videos.updated", service.handleVideoEvent)
	eventBus.Subscribe("videos.deleted", service.handleVideoEvent)

	return service
}

func (s *VideoService) handleVideoEvent(ctx context.Context, event util.Event) error {
	switch payload := event.Payload.(type) {
	case model.Video:
		verb := event.Type[len("videos."):]
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceVideos), verb, payload.ID)
	case uint:
		return s.notificationSvc.NotifyResourceChange(ctx, string(scope.ResourceVideos), "deleted", payload)
	default:
		return fmt.Errorf("unexpected video event payload %T", event.Payload)
	}
}

// CreateVideo pins the new video to an institute the caller controls, then
// writes, invalidates and announces it.
func (s *VideoService) CreateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error) {
	if !sc.Capabilities.ManageContent {
		recordDenial(ctx, s.auditService, sc, "CREATE_VIDEO", scope.ResourceVideos, 0)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	instituteID, err := s.resolveTargetInstitute(ctx, sc, video.InstituteID)
	if err != nil {
		recordDenial(ctx, s.auditService, sc, "CREATE_VIDEO", scope.ResourceVideos, 0)
		return nil, err
	}
	video.InstituteID = instituteID

	if err := s.validationUtil.ValidateVideo(video); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidVideoData, err)
	}

	created, err := s.videoDAO.CreateVideo(ctx, video, sc)
	if err != nil {
		logger.Error("Error creating video", zap.Error(err), zap.Uint("callerID", sc.UserID))
		return nil, err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "videos.created", *created)

	logger.Info("Video created", zap.Uint("videoID", created.ID), zap.Uint("callerID", sc.UserID))
	return created, nil
}

func (s *VideoService) UpdateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error) {
	if !sc.Capabilities.ManageContent {
		recordDenial(ctx, s.auditService, sc, "UPDATE_VIDEO", scope.ResourceVideos, video.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	check, err := s.videoDAO.ValidateScope(ctx, []uint{video.ID}, sc)
	if err != nil {
		return nil, err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "UPDATE_VIDEO", scope.ResourceVideos, video.ID)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	if err := s.validationUtil.ValidateVideo(video); err != nil {
		return nil, fmt.Errorf("%w: %v", gurukul_errors.ErrInvalidVideoData, err)
	}

	updated, err := s.videoDAO.UpdateVideo(ctx, video, sc)
	if err != nil {
		return nil, err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "videos.updated", *updated)
	return updated, nil
}

func (s *VideoService) DeleteVideo(ctx context.Context, id uint, sc scope.Context) error {
	if !sc.Capabilities.ManageContent {
		recordDenial(ctx, s.auditService, sc, "DELETE_VIDEO", scope.ResourceVideos, id)
		return gurukul_errors.ErrScopeForbidden
	}

	check, err := s.videoDAO.ValidateScope(ctx, []uint{id}, sc)
	if err != nil {
		return err
	}
	if !check.AllValid() {
		recordDenial(ctx, s.auditService, sc, "DELETE_VIDEO", scope.ResourceVideos, id)
		return gurukul_errors.ErrScopeForbidden
	}

	if err := s.videoDAO.DeleteVideo(ctx, id, sc); err != nil {
		return err
	}

	s.invalidate()
	s.eventBus.Publish(ctx, "videos.deleted", id)
	return nil
}

// BulkDeleteVideos validates the whole target set before touching any row.
// A mixed result aborts unless the caller opted into partial semantics; the
// returned Check always reports what was and was not authorized.
func (s *VideoService) BulkDeleteVideos(ctx context.Context, req model.VideoBulkDeleteRequest, sc scope.Context) (scope.Check, error) {
	if !sc.Capabilities.ManageContent {
		recordDenial(ctx, s.auditService, sc, "BULK_DELETE_VIDEOS", scope.ResourceVideos, 0)
		return scope.Check{}, gurukul_errors.ErrScopeForbidden
	}

	locked, err := s.locker.Lock(ctx, "videos:bulk_delete", bulkLockTTL)
	if err != nil {
		return scope.Check{}, err
	}
	if !locked {
		return scope.Check{}, gurukul_errors.ErrResourceBusy
	}
	defer func() {
		if err := s.locker.Unlock(ctx, "videos:bulk_delete"); err != nil {
			logger.Error("Failed to release bulk delete lock", zap.Error(err))
		}
	}()

	check, err := s.videoDAO.ValidateScope(ctx, req.IDs, sc)
	if err != nil {
		return scope.Check{}, err
	}
	if !check.AllValid() && !req.Partial {
		recordDenial(ctx, s.auditService, sc, "BULK_DELETE_VIDEOS", scope.ResourceVideos, 0)
		return check, check.PartialError()
	}

	if len(check.ValidIDs) > 0 {
		if _, err := s.videoDAO.DeleteVideos(ctx, check.ValidIDs, sc); err != nil {
			return check, err
		}
		s.invalidate()
		s.eventBus.Publish(ctx, "videos.bulk_deleted", check.ValidIDs)
		if err := s.notificationSvc.NotifyBulkChange(ctx, string(scope.ResourceVideos), "deleted", len(check.ValidIDs)); err != nil {
			logger.Warn("Failed to send bulk delete notification", zap.Error(err))
		}
	}

	return check, nil
}

func (s *VideoService) GetVideo(ctx context.Context, id uint, sc scope.Context) (*model.Video, error) {
	key := cache.Key(cache.Op(scope.ResourceVideos, "get"), map[string]uint{"id": id}, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) (*model.Video, error) {
		return s.videoDAO.GetVideo(ctx, id, sc)
	})
}

// SearchVideos is the cached list read. The boundary check runs before
// anything else so an out-of-scope explicit filter is a 403, not an empty
// page.
func (s *VideoService) SearchVideos(ctx context.Context, criteria model.VideoSearchCriteria, sc scope.Context) ([]*model.Video, error) {
	err := scope.CheckFilters(scope.ResourceVideos, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})
	if err != nil {
		recordDenial(ctx, s.auditService, sc, "SEARCH_VIDEOS", scope.ResourceVideos, 0)
		return nil, err
	}

	key := cache.Key(cache.Op(scope.ResourceVideos, "search"), criteria, sc)
	return fromCache(ctx, s.caches.Query, key, func(ctx context.Context) ([]*model.Video, error) {
		return s.videoDAO.SearchVideos(ctx, criteria, sc)
	})
}

func (s *VideoService) VideoStats(ctx context.Context, sc scope.Context) ([]model.VideoCategoryStat, error) {
	if !sc.Capabilities.ViewStats {
		recordDenial(ctx, s.auditService, sc, "VIDEO_STATS", scope.ResourceVideos, 0)
		return nil, gurukul_errors.ErrScopeForbidden
	}

	key := cache.Key(cache.Op(scope.ResourceVideos, "stats"), nil, sc)
	return fromCache(ctx, s.caches.Stats, key, func(ctx context.Context) ([]model.VideoCategoryStat, error) {
		return s.videoDAO.CategoryStats(ctx, sc)
	})
}

// invalidate clears the video namespace everywhere, plus institutes because
// their aggregate counts include videos.
func (s *VideoService) invalidate() {
	s.caches.InvalidateResource(scope.ResourceVideos)
	s.caches.InvalidateResource(scope.ResourceInstitutes)
}

// resolveTargetInstitute decides which institute a new content row lands
// in. Institute-bound callers always write into their own; zonal admins may
// write into any institute of their zone; super admins say explicitly.
func (s *VideoService) resolveTargetInstitute(ctx context.Context, sc scope.Context, requested *uint) (*uint, error) {
	return resolveTargetInstitute(ctx, s.videoDAO.ResolveInstitute, sc, requested)
}
