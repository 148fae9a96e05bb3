package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/insightd-dev/insightd/internal/models"
)

// readNotificationRetention is how long read notifications are kept
const readNotificationRetention = 30 * 24 * time.Hour

// HandleNotificationsCleanup prunes read notifications older than the
// retention window.
func HandleNotificationsCleanup(ctx context.Context, task *asynq.Task, db *gorm.DB, log zerolog.Logger) error {
	cutoff := time.Now().UTC().Add(-readNotificationRetention)

	result := db.Where("read_at IS NOT NULL AND read_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to prune notifications: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Info().Int64("pruned", result.RowsAffected).Msg("Pruned read notifications")
	}
	return nil
}
