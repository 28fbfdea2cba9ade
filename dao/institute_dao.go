// api/dao/institute_dao.go
package dao

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gurukul-labs/gurukul/api/audit"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

type InstituteDAO struct {
	DB           *gorm.DB
	AuditService audit.Service
}

func NewInstituteDAO(db *gorm.DB, auditService audit.Service) *InstituteDAO {
	return &InstituteDAO{DB: db, AuditService: auditService}
}

func (dao *InstituteDAO) CreateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error) {
	if err := dao.DB.WithContext(ctx).Create(&institute).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, gurukul_errors.ErrInstituteConflict
		}
		logger.Error("Failed to create institute", zap.Error(err), zap.String("code", institute.Code))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	logger.Info("Institute created", zap.Uint("instituteID", institute.ID))
	dao.recordAudit(ctx, sc, "CREATE_INSTITUTE", institute.ID, true)
	return &institute, nil
}

func (dao *InstituteDAO) UpdateInstitute(ctx context.Context, institute model.Institute, sc scope.Context) (*model.Institute, error) {
	updates := map[string]interface{}{
		"name":    institute.Name,
		"email":   institute.Email,
		"phone":   institute.Phone,
		"address": institute.Address,
		"active":  institute.Active,
	}

	result := dao.DB.WithContext(ctx).Model(&model.Institute{}).Where("id = ?", institute.ID).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update institute", zap.Error(result.Error), zap.Uint("instituteID", institute.ID))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return nil, gurukul_errors.ErrInstituteNotFound
	}

	var updated model.Institute
	if err := dao.DB.WithContext(ctx).First(&updated, institute.ID).Error; err != nil {
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	dao.recordAudit(ctx, sc, "UPDATE_INSTITUTE", institute.ID, true)
	return &updated, nil
}

func (dao *InstituteDAO) DeleteInstitute(ctx context.Context, id uint, sc scope.Context) error {
	result := dao.DB.WithContext(ctx).Delete(&model.Institute{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete institute", zap.Error(result.Error), zap.Uint("instituteID", id))
		return gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return gurukul_errors.ErrInstituteNotFound
	}

	dao.recordAudit(ctx, sc, "DELETE_INSTITUTE", id, true)
	return nil
}

// SetInstitutesActive toggles the Active flag on a validated id set.
func (dao *InstituteDAO) SetInstitutesActive(ctx context.Context, ids []uint, active bool, sc scope.Context) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := dao.DB.WithContext(ctx).Model(&model.Institute{}).
		Where("id IN ?", ids).
		Update("active", active)
	if result.Error != nil {
		logger.Error("Failed to update institute status", zap.Error(result.Error), zap.Int("count", len(ids)))
		return 0, gurukul_errors.ErrDatabaseOperation
	}

	for _, id := range ids {
		dao.recordAudit(ctx, sc, "UPDATE_INSTITUTE_STATUS", id, true)
	}
	return result.RowsAffected, nil
}

// GetInstitute fetches one institute through the caller's scope.
func (dao *InstituteDAO) GetInstitute(ctx context.Context, id uint, sc scope.Context) (*model.Institute, error) {
	q := dao.DB.WithContext(ctx).Model(&model.Institute{}).Where("id = ?", id)
	q = scope.Apply(q, scope.ResourceInstitutes, sc, scope.Filters{})

	var institute model.Institute
	if err := q.First(&institute).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gurukul_errors.ErrInstituteNotFound
		}
		logger.Error("Failed to get institute", zap.Error(err), zap.Uint("instituteID", id))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return &institute, nil
}

func (dao *InstituteDAO) SearchInstitutes(ctx context.Context, criteria model.InstituteSearchCriteria, sc scope.Context) ([]*model.Institute, error) {
	start := time.Now()

	q := dao.DB.WithContext(ctx).Model(&model.Institute{})
	q = scope.Apply(q, scope.ResourceInstitutes, sc, scope.Filters{
		ZoneID: criteria.ZoneID,
	})

	if criteria.Active != nil {
		q = q.Where("active = ?", *criteria.Active)
	}
	if criteria.SearchTerm != "" {
		term := "%" + criteria.SearchTerm + "%"
		q = q.Where("name ILIKE ? OR code ILIKE ?", term, term)
	}

	q = q.Order(orderClause(criteria.SortBy, criteria.SortOrder, []string{"name", "code", "created_at"}))
	q = q.Limit(normalizeLimit(criteria.Limit)).Offset(normalizeOffset(criteria.Offset))

	var institutes []*model.Institute
	if err := q.Find(&institutes).Error; err != nil {
		logger.Error("Failed to search institutes", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return institutes, nil
}

// InstituteStats counts the institute's users, courses and videos. The
// three counts run concurrently; any failure cancels the others.
func (dao *InstituteDAO) InstituteStats(ctx context.Context, id uint) (*model.InstituteStats, error) {
	stats := &model.InstituteStats{InstituteID: id}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dao.DB.WithContext(gctx).Model(&model.User{}).
			Where("institute_id = ?", id).Count(&stats.UserCount).Error
	})
	g.Go(func() error {
		return dao.DB.WithContext(gctx).Model(&model.Course{}).
			Where("institute_id = ?", id).Count(&stats.CourseCount).Error
	})
	g.Go(func() error {
		return dao.DB.WithContext(gctx).Model(&model.Video{}).
			Where("institute_id = ?", id).Count(&stats.VideoCount).Error
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to compute institute stats", zap.Error(err), zap.Uint("instituteID", id))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	return stats, nil
}

func (dao *InstituteDAO) ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error) {
	return scope.ValidateIDs(ctx, dao.DB, scope.ResourceInstitutes, ids, sc)
}

func (dao *InstituteDAO) recordAudit(ctx context.Context, sc scope.Context, action string, resourceID uint, granted bool) {
	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        sc.UserID,
		Role:          string(sc.Role),
		InstituteID:   sc.InstituteID,
		ZoneID:        sc.ZoneID,
		Action:        action,
		Resource:      string(scope.ResourceInstitutes),
		ResourceID:    resourceID,
		AccessGranted: granted,
	}
	if err := dao.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to record audit entry", zap.Error(err), zap.String("action", action))
	}
}
