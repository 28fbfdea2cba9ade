// api/dao/user_dao.go
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

type UserDAO struct {
	DB           *gorm.DB
	AuditService audit.Service
}

func NewUserDAO(db *gorm.DB, auditService audit.Service) *UserDAO {
	return &UserDAO{DB: db, AuditService: auditService}
}

func (dao *UserDAO) CreateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error) {
	start := time.Now()

	if err := dao.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, gurukul_errors.ErrUserConflict
		}
		logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.Duration("duration", time.Since(start)))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	logger.Info("User created",
		zap.Uint("userID", user.ID),
		zap.Duration("duration", time.Since(start)))
	dao.recordAudit(ctx, sc, "CREATE_USER", user.ID, true)
	return &user, nil
}

func (dao *UserDAO) UpdateUser(ctx context.Context, user model.User, sc scope.Context) (*model.User, error) {
	updates := map[string]interface{}{
		"name":   user.Name,
		"phone":  user.Phone,
		"role":   user.Role,
		"active": user.Active,
	}

	result := dao.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update user", zap.Error(result.Error), zap.Uint("userID", user.ID))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return nil, gurukul_errors.ErrUserNotFound
	}

	var updated model.User
	if err := dao.DB.WithContext(ctx).First(&updated, user.ID).Error; err != nil {
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	dao.recordAudit(ctx, sc, "UPDATE_USER", user.ID, true)
	return &updated, nil
}

func (dao *UserDAO) DeleteUser(ctx context.Context, id uint, sc scope.Context) error {
	result := dao.DB.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete user", zap.Error(result.Error), zap.Uint("userID", id))
		return gurukul_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return gurukul_errors.ErrUserNotFound
	}

	dao.recordAudit(ctx, sc, "DELETE_USER", id, true)
	return nil
}

// DeactivateUsers flips Active off for a validated id set and returns how
// many rows changed.
func (dao *UserDAO) DeactivateUsers(ctx context.Context, ids []uint, sc scope.Context) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := dao.DB.WithContext(ctx).Model(&model.User{}).
		Where("id IN ?", ids).
		Update("active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate users", zap.Error(result.Error), zap.Int("count", len(ids)))
		return 0, gurukul_errors.ErrDatabaseOperation
	}

	for _, id := range ids {
		dao.recordAudit(ctx, sc, "DEACTIVATE_USER", id, true)
	}
	logger.Info("Users deactivated", zap.Int64("updated", result.RowsAffected))
	return result.RowsAffected, nil
}

// GetUser fetches one user through the caller's scope; out-of-scope rows
// read as not found.
func (dao *UserDAO) GetUser(ctx context.Context, id uint, sc scope.Context) (*model.User, error) {
	q := dao.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id)
	q = scope.Apply(q, scope.ResourceUsers, sc, scope.Filters{})

	var user model.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gurukul_errors.ErrUserNotFound
		}
		logger.Error("Failed to get user", zap.Error(err), zap.Uint("userID", id))
		return nil, gurukul_errors.ErrDatabaseOperation
	}
	return &user, nil
}

func (dao *UserDAO) SearchUsers(ctx context.Context, criteria model.UserSearchCriteria, sc scope.Context) ([]*model.User, error) {
	start := time.Now()

	q := dao.DB.WithContext(ctx).Model(&model.User{})
	q = scope.Apply(q, scope.ResourceUsers, sc, scope.Filters{
		InstituteID: criteria.InstituteID,
		ZoneID:      criteria.ZoneID,
	})

	if criteria.Role != "" {
		q = q.Where("role = ?", criteria.Role)
	}
	if criteria.Active != nil {
		q = q.Where("active = ?", *criteria.Active)
	}
	if criteria.FromDate != nil {
		q = q.Where("created_at >= ?", *criteria.FromDate)
	}
	if criteria.ToDate != nil {
		q = q.Where("created_at <= ?", *criteria.ToDate)
	}
	if criteria.SearchTerm != "" {
		term := "%" + criteria.SearchTerm + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ?", term, term)
	}

	q = q.Order(orderClause(criteria.SortBy, criteria.SortOrder, []string{"name", "email", "role", "created_at"}))
	q = q.Limit(normalizeLimit(criteria.Limit)).Offset(normalizeOffset(criteria.Offset))

	var users []*model.User
	if err := q.Find(&users).Error; err != nil {
		logger.Error("Failed to search users", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, gurukul_errors.ErrDatabaseOperation
	}

	logger.Debug("Users searched",
		zap.Int("count", len(users)),
		zap.Duration("duration", time.Since(start)))
	return users, nil
}

func (dao *UserDAO) ValidateScope(ctx context.Context, ids []uint, sc scope.Context) (scope.Check, error) {
	return scope.ValidateIDs(ctx, dao.DB, scope.ResourceUsers, ids, sc)
}

func (dao *UserDAO) recordAudit(ctx context.Context, sc scope.Context, action string, resourceID uint, granted bool) {
	entry := audit.Entry{
		Timestamp:     time.Now(),
		UserID:        sc.UserID,
		Role:          string(sc.Role),
		InstituteID:   sc.InstituteID,
		ZoneID:        sc.ZoneID,
		Action:        action,
		Resource:      string(scope.ResourceUsers),
		ResourceID:    resourceID,
		AccessGranted: granted,
	}
	if err := dao.AuditService.Record(ctx, entry); err != nil {
		logger.Error("Failed to record audit entry", zap.Error(err), zap.String("action", action))
	}
}
