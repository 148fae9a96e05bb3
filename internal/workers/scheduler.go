package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/insightd-dev/insightd/internal/models"
	"github.com/insightd-dev/insightd/internal/tasks"
)

// StartInsightsScheduler runs a periodic check (every minute) for the
// configured insight refresh schedule and enqueues refresh tasks when due.
func StartInsightsScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueInsightsRefresh(client, db, logger)

	for range ticker.C {
		checkAndEnqueueInsightsRefresh(client, db, logger)
	}
}

// StartNotificationsCleanupScheduler enqueues a daily prune of old read
// notifications.
func StartNotificationsCleanupScheduler(client *asynq.Client, logger zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	enqueueNotificationsCleanup(client, logger)

	for range ticker.C {
		enqueueNotificationsCleanup(client, logger)
	}
}

func enqueueNotificationsCleanup(client *asynq.Client, logger zerolog.Logger) {
	task, err := tasks.NewNotificationsCleanupTask()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build notifications cleanup task")
		return
	}

	if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue notifications cleanup task")
		return
	}

	logger.Info().Msg("Notifications cleanup enqueued")
}

func checkAndEnqueueInsightsRefresh(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	var serverConfig models.Config
	err := db.First(&serverConfig).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No config found - skipping insights check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query config for insights schedule")
		return
	}

	if serverConfig.InsightSchedule == "" {
		logger.Debug().Msg("No insight schedule configured")
		return
	}

	if serverConfig.NextInsightsAt != nil && serverConfig.NextInsightsAt.After(time.Now()) {
		logger.Debug().
			Time("next_insights_at", *serverConfig.NextInsightsAt).
			Msg("Insights refresh not due yet")
		return
	}

	schedule, err := cron.ParseStandard(serverConfig.InsightSchedule)
	if err != nil {
		logger.Error().
			Err(err).
			Str("insight_schedule", serverConfig.InsightSchedule).
			Msg("Invalid insight schedule cron expression")
		return
	}

	task, err := tasks.NewInsightsRefreshTask("")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build insights refresh task")
		return
	}

	if _, err := client.Enqueue(task); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue insights refresh task")
		return
	}

	// Record the next due time before the task runs; a failed run is
	// retried by asynq, not by the scheduler.
	next := schedule.Next(time.Now())
	if err := db.Model(&serverConfig).Update("next_insights_at", next).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to update next insights time")
		return
	}

	logger.Info().
		Str("insight_schedule", serverConfig.InsightSchedule).
		Time("next_insights_at", next).
		Msg("Insights refresh enqueued by scheduler")
}
