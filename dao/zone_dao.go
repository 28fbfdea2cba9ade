// api/dao/zone_dao.go
package dao

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gurukul-labs/gurukul/api/audit"
	gurukul_errors "github.com/gurukul-labs/gurukul/api/errors"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/model"
	"github.com/gurukul-labs/gurukul/api/scope"
)

type ZoneDAO struct {
	DB           *gorm.DB
	AuditService audit.Service
}

func NewZoneDAO(db *gorm.DB, auditService audit.Service) *ZoneDAO {
	return &ZoneDAO{DB: db, AuditService: auditService}
}

func (dao *ZoneDAO) CreateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error) {
	if err := dao.DB.WithContext(ctx).Create(&zone).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, gurukul_errors.ErrZoneConflict
		}
		logger.Error("Failed to create zone", zap.Error(err), zap.String("code", zone.Code))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	logger.Info("Zone created", zap.Uint("zoneID", zone.ID))
	dao.recordAudit(ctx, sc, "CREATE_ZONE", zone.ID, true)
	return &zone, nil
}

func (dao *ZoneDAO) UpdateZone(ctx context.Context, zone model.Zone, sc scope.Context) (*model.Zone, error) {
	updates := map[string]interface{}{
		"name":   zone.Name,
		"active": zone.Active,
	}

	result := dao.DB.WithContext(ctx).Model(&model.Zone{}).Where("id = ?", zone.ID).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update zone", zap.Error(result.Error), zap.Uint("zoneID", zone.ID))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return nil, gurukul_errors.ErrZoneNotFound
	}

	var updated model.Zone
	if err := dao.DB.WithContext(ctx).First(&updated, zone.ID).Error; err != nil {
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	dao.recordAudit(ctx, sc, "UPDATE_ZONE", zone.ID, true)
	return &updated, nil
}

func (dao *ZoneDAO) DeleteZone(ctx context.Context, id uint, sc scope.Context) error {
	result := dao.DB.WithContext(ctx).Delete(&model.Zone{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete zone", zap.Error(result.Error), zap.Uint("zoneID", id))
		return gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return gurukul_errors.ErrZoneNotFound
	}

	dao.recordAudit(ctx, sc, "DELETE_ZONE", id, true)
	return nil
}

func (dao *ZoneDAO) GetZone(ctx context.Context, id uint, sc scope.Context) (*model.Zone, error) {
	q := dao.DB.WithContext(ctx).Model(&model.Zone{}).Where("id = ?", id)
	q = scope.Apply(q, scope.ResourceZones, sc, scope.Filters{})

	var zone model.Zone
	if err := q.First(&zone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gurukul_errors.ErrZoneNotFound
		}
		logger.Error("Failed to get zone", zap.Error(err), zap.Uint("zoneID", id))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return &zone, nil
}

func (dao *ZoneDAO) SearchZones(ctx context.Context, criteria model.ZoneSearchCriteria, sc scope.Context) ([]*model.Zone, error) {
	q := dao.DB.WithContext(ctx).Model(&model.Zone{})
	q = scope.Apply(q, scope.ResourceZones, sc, scope.Filters{})

	if criteria.Active != nil {
		q = q.Where("active = ?", *criteria.Active)
	}
	if criteria.SearchTerm != "" {
		term := "%" + criteria.SearchTerm + "%"
		q = q.Where("name ILIKE ? OR code ILIKE ?", term, term)
	}

	q = q.Order(orderClause(criteria.SortBy, criteria.SortOrder, []string{"name", "code", "created_at"}))
	q = q.Limit(normalizeLimit(criteria.Limit)).Offset(normalizeOffset(criteria.Offset))

	var zones []*model.Zone
	if err := q.Find(&zones).Error; err != nil {
		logger.Error("Failed to search zones", zap.Error(err))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return zones, nil
}

func (dao *ZoneDAO) ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error) {
	return scope.ValidateIDs(ctx, dao.DB, scope.ResourceZones, ids, sc)
}

func (dao *ZoneDAO) recordAudit(ctx context.Context, sc scope.Context, action string, resourceID uint, granted bool) {
	entry := audit.Entry{
		UserID:        sc.UserID,
		Role:          string(sc.Role),
		InstituteID:   sc.InstituteID,
		ZoneID:        sc.ZoneID,
		Action:        action,
		Resource:      string(scope.ResourceZones),
		ResourceID:    resourceID,
		AccessGranted: granted,
	}
	if err := dao.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to record audit entry", zap.Error(err), zap.String("action", action))
	}
}
