// api/dao/video_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gurukul-labs/gurukul/api/audit"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

type VideoDAO struct {
	DB           *gorm.DB
	AuditService audit.Service
}

func NewVideoDAO(db *gorm.DB, auditService audit.Service) *VideoDAO {
	return &VideoDAO{DB: db, AuditService: auditService}
}

// CreateVideo inserts the video, denormalizing ZoneID from its institute so
// zonal scoping never needs a join.
func (dao *VideoDAO) CreateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error) {
	start := time.Now()

	if video.InstituteID != nil {
		zoneID, _, err := resolveInstitute(ctx, dao.DB, *video.InstituteID)
		if err != nil {
			return nil, err
		}
		video.ZoneID = zoneID
	}

	if err := dao.DB.WithContext(ctx).Create(&video).Error; err != nil {
		logger.Error("Failed to create video",
			zap.Error(err),
			zap.String("title", video.Title),
			zap.Duration("duration", time.Since(start)))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	logger.Info("Video created",
		zap.Uint("videoID", video.ID),
		zap.Duration("duration", time.Since(start)))
	dao.recordAudit(ctx, sc, "CREATE_VIDEO", video.ID, true)
	return &video, nil
}

// UpdateVideo rewrites the mutable columns of a video already confirmed to
// be inside the caller's scope.
func (dao *VideoDAO) UpdateVideo(ctx context.Context, video model.Video, sc scope.Context) (*model.Video, error) {
	updates := map[string]interface{}{
		"title":            video.Title,
		"description":      video.Description,
		"category":         video.Category,
		"playback_url":     video.PlaybackURL,
		"duration_seconds": video.DurationSeconds,
		"course_id":        video.CourseID,
		"active":           video.Active,
	}

	result := dao.DB.WithContext(ctx).Model(&model.Video{}).Where("id = ?", video.ID).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update video", zap.Error(result.Error), zap.Uint("videoID", video.ID))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return nil, gurukul_errors.ErrVideoNotFound
	}

	var updated model.Video
	if err := dao.DB.WithContext(ctx).First(&updated, video.ID).Error; err != nil {
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	dao.recordAudit(ctx, sc, "UPDATE_VIDEO", video.ID, true)
	return &updated, nil
}

func (dao *VideoDAO) DeleteVideo(ctx context.Context, id uint, sc scope.Context) error {
	result := dao.DB.WithContext(ctx).Delete(&model.Video{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete video", zap.Error(result.Error), zap.Uint("videoID", id))
		return gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return gurukul_errors.ErrVideoNotFound
	}

	dao.recordAudit(ctx, sc, "DELETE_VIDEO", id, true)
	return nil
}

// DeleteVideos removes a set of videos whose ids were already validated
// against the caller's scope.
func (dao *VideoDAO) DeleteVideos(ctx context.Context, ids []uint, sc scope.Context) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := dao.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Video{})
	if result.Error != nil {
		logger.Error("Failed to bulk delete videos", zap.Error(result.Error), zap.Int("count", len(ids)))
		return 0, gurukul_errors.ErrDatabaseOperation
	}

	for _, id := range ids {
		dao.recordAudit(ctx, sc, "DELETE_VIDEO", id, true)
	}
	logger.Info("Videos bulk deleted", zap.Int64("deleted", result.RowsAffected))
	return result.RowsAffected, nil
}

// GetVideo fetches one video through the caller's scope. A row outside the
// scope reads as not found; existence is not separable from authorization.
func (dao *VideoDAO) GetVideo(ctx context.Context, id uint, sc scope.Context) (*model.Video, error) {
	q := dao.DB.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id)
	q = scope.Apply(q, scope.ResourceVideos, sc, scope.Filters{})

	var video model.Video
	if err := q.First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gurukul_errors.ErrVideoNotFound
		}
		logger.Error("Failed to get video", zap.Error(err), zap.Uint("videoID", id))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return &video, nil
}

// SearchVideos runs the scope-filtered list query. The tenancy filters in
// the criteria must already have passed scope.CheckFilters.
func (dao *VideoDAO) SearchVideos(ctx context.Context, criteria model.VideoSearchCriteria, sc scope.Context) ([]*model.Video, error) {
	start := time.Now()

	q := dao.DB.WithContext(ctx).Model(&model.Video{})
	q = scope.Apply(q, scope.ResourceVideos, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})

	if criteria.Category != "" {
		q = q.Where("category = ?", criteria.Category)
	}
	if criteria.CourseID != nil {
		q = q.Where("course_id = ?", *criteria.CourseID)
	}
	if criteria.Active != nil {
		q = q.Where("active = ?", *criteria.Active)
	}
	if criteria.SearchTerm != "" {
		term := "%" + criteria.SearchTerm + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", term, term)
	}

	q = q.Order(orderClause(criteria.SortBy, criteria.SortOrder, []string{"title", "category", "created_at"}))
	q = q.Limit(normalizeLimit(criteria.Limit)).Offset(normalizeOffset(criteria.Offset))

	var videos []*model.Video
	if err := q.Find(&videos).Error; err != nil {
		logger.Error("Failed to search videos", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	logger.Debug("Videos searched",
		zap.Int("count", len(videos)),
		zap.Duration("duration", time.Since(start)))
	return videos, nil
}

// CategoryStats counts the caller-visible videos per category.
func (dao *VideoDAO) CategoryStats(ctx context.Context, sc scope.Context) ([]model.VideoCategoryStat, error) {
	q := dao.DB.WithContext(ctx).Model(&model.Video{})
	q = scope.Apply(q, scope.ResourceVideos, sc, scope.Filters{})

	var stats []model.VideoCategoryStat
	err := q.Select("category, COUNT(*) as count").Group("category").Order("category").Find(&stats).Error
	if err != nil {
		logger.Error("Failed to compute video category stats", zap.Error(err))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return stats, nil
}

// ValidateScope classifies explicit target ids with the shared rule table.
func (dao *VideoDAO) ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error) {
	return scope.ValidateIDs(ctx, dao.DB, scope.ResourceVideos, ids, sc)
}

// ResolveInstitute returns the zone and active flag of an institute, for
// write-time denormalization and cross-tenant checks.
func (dao *VideoDAO) ResolveInstitute(ctx context.Context, instituteID uint) (*uint, bool, error) {
	return resolveInstitute(ctx, dao.DB, instituteID)
}

func (dao *VideoDAO) recordAudit(ctx context.Context, sc scope.Context, action string, resourceID uint, granted bool) {
	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        sc.UserID,
		Role:          string(sc.Role),
		InstituteID:   sc.InstituteID,
		ZoneID:        sc.ZoneID,
		Action:        action,
		Resource:      string(scope.ResourceVideos),
		ResourceID:    resourceID,
		AccessGranted: granted,
	}
	if err := dao.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to record audit entry", zap.Error(err), zap.String("action", action))
	}
}

// resolveInstitute is shared by the content DAOs that denormalize zone ids.
func resolveInstitute(ctx context.Context, db *gorm.DB, instituteID uint) (*uint, bool, error) {
	var institute model.Institute
	err := db.WithContext(ctx).Select("id", "zone_id", "active").First(&institute, instituteID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, gurukul_errors.ErrInstituteNotFound
		}
		return nil, false, fmt.Errorf("failed to resolve institute %d: %w", instituteID, err)
	}
	return institute.ZoneID, institute.Active, nil
}
