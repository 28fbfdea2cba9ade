// api/util/notification_service.go
package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/gurukul-labs/gurukul/api/logging"
)

// NotificationService fans domain changes out to whoever needs to hear
// about them. Delivery is currently log-only; the call sites are the part
// that matters, a real transport slots in behind this type.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyResourceChange announces a create/update/delete on one resource row.
func (n *NotificationService) NotifyResourceChange(ctx context.Context, resource, changeType string, resourceID uint) error {
	switch changeType {
	case "created", "updated", "deleted", "deactivated":
		logger.Info("NOTIFICATION: resource changed",
			zap.String("resource", resource),
			zap.String("change", changeType),
			zap.Uint("resourceID", resourceID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

// NotifyBulkChange announces a bulk mutation and how many rows it touched.
func (n *NotificationService) NotifyBulkChange(ctx context.Context, resource, changeType string, count int) error {
	logger.Info("NOTIFICATION: bulk change",
		zap.String("resource", resource),
		zap.String("change", changeType),
		zap.Int("count", count))
	return nil
}
