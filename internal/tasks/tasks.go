package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeInsightsRefresh      = "insights:refresh"
	TypeNotificationsCleanup = "notifications:cleanup"
)

// InsightsRefreshPayload carries the context of a refresh request
type InsightsRefreshPayload struct {
	// TriggeredBy is the user ID of the admin who requested the
	// refresh, empty for scheduler-initiated runs.
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// NewInsightsRefreshTask creates a task to recompute dashboard insights
func NewInsightsRefreshTask(triggeredBy string) (*asynq.Task, error) {
	payload, err := json.Marshal(InsightsRefreshPayload{TriggeredBy: triggeredBy})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeInsightsRefresh, payload), nil
}

// NewNotificationsCleanupTask creates a task to prune old read notifications
func NewNotificationsCleanupTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeNotificationsCleanup, nil), nil
}

// ParseInsightsRefreshPayload parses the payload of an insights:refresh task
func ParseInsightsRefreshPayload(task *asynq.Task) (InsightsRefreshPayload, error) {
	var payload InsightsRefreshPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
