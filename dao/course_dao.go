// api/dao/course_dao.go
package dao

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gurukul-labs/gurukul/api/audit"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

type CourseDAO struct {
	DB           *gorm.DB
	AuditService audit.Service
}

func NewCourseDAO(db *gorm.DB, auditService audit.Service) *CourseDAO {
	return &CourseDAO{DB: db, AuditService: auditService}
}

// CreateCourse inserts the course with its ZoneID denormalized from the
// owning institute.
func (dao *CourseDAO) CreateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error) {
	if course.InstituteID != nil {
		zoneID, _, err := resolveInstitute(ctx, dao.DB, *course.InstituteID)
		if err != nil {
			return nil, err
		}
		course.ZoneID = zoneID
	}

	if err := dao.DB.WithContext(ctx).Create(&course).Error; err != nil {
		logger.Error("Failed to create course", zap.Error(err), zap.String("title", course.Title))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	logger.Info("Course created", zap.Uint("courseID", course.ID))
	dao.recordAudit(ctx, sc, "CREATE_COURSE", course.ID, true)
	return &course, nil
}

func (dao *CourseDAO) UpdateCourse(ctx context.Context, course model.Course, sc scope.Context) (*model.Course, error) {
	updates := map[string]interface{}{
		"title":       course.Title,
		"description": course.Description,
		"category":    course.Category,
		"active":      course.Active,
	}

	result := dao.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", course.ID).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update course", zap.Error(result.Error), zap.Uint("courseID", course.ID))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return nil, gurukul_errors.ErrCourseNotFound
	}

	var updated model.Course
	if err := dao.DB.WithContext(ctx).First(&updated, course.ID).Error; err != nil {
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	dao.recordAudit(ctx, sc, "UPDATE_COURSE", course.ID, true)
	return &updated, nil
}

func (dao *CourseDAO) DeleteCourse(ctx context.Context, id uint, sc scope.Context) error {
	result := dao.DB.WithContext(ctx).Delete(&model.Course{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete course", zap.Error(result.Error), zap.Uint("courseID", id))
		return gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return gurukul_errors.ErrCourseNotFound
	}

	dao.recordAudit(ctx, sc, "DELETE_COURSE", id, true)
	return nil
}

// GetCourse fetches one course through the caller's scope; out-of-scope
// rows read as not found.
func (dao *CourseDAO) GetCourse(ctx context.Context, id uint, sc scope.Context) (*model.Course, error) {
	q := dao.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id)
	q = scope.Apply(q, scope.ResourceCourses, sc, scope.Filters{})

	var course model.Course
	if err := q.First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gurukul_errors.ErrCourseNotFound
		}
		logger.Error("Failed to get course", zap.Error(err), zap.Uint("courseID", id))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return &course, nil
}

func (dao *CourseDAO) SearchCourses(ctx context.Context, criteria model.CourseSearchCriteria, sc scope.Context) ([]*model.Course, error) {
	start := time.Now()

	q := dao.DB.WithContext(ctx).Model(&model.Course{})
	q = scope.Apply(q, scope.ResourceCourses, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})

	if criteria.Category != "" {
		q = q.Where("category = ?", criteria.Category)
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

	var courses []*model.Course
	if err := q.Find(&courses).Error; err != nil {
		logger.Error("Failed to search courses", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return courses, nil
}

func (dao *CourseDAO) ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error) {
	return scope.ValidateIDs(ctx, dao.DB, scope.ResourceCourses, ids, sc)
}

func (dao *CourseDAO) ResolveInstitute(ctx context.Context, instituteID uint) (*uint, bool, error) {
	return resolveInstitute(ctx, dao.DB, instituteID)
}

func (dao *CourseDAO) recordAudit(ctx context.Context, sc scope.Context, action string, resourceID uint, granted bool) {
	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        sc.UserID,
		Role:          string(sc.Role),
		InstituteID:   sc.InstituteID,
		ZoneID:        sc.ZoneID,
		Action:        action,
		Resource:      string(scope.ResourceCourses),
		ResourceID:    resourceID,
		AccessGranted: granted,
	}
	if err := dao.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to record audit entry", zap.Error(err), zap.String("action", action))
	}
}
