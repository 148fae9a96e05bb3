package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/insightd-dev/insightd/internal/models"
	"github.com/insightd-dev/insightd/internal/tasks"
)

// listInsights returns the current set of computed insights
func (s *Server) listInsights(c *gin.Context) {
	var insights []models.Insight
	if err := s.db.Order("score DESC").Find(&insights).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list insights")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, insights)
}

// triggerInsightsRefresh enqueues an insights recomputation (admin only)
func (s *Server) triggerInsightsRefresh(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	task, err := tasks.NewInsightsRefreshTask(sessionData.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build insights refresh task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	info, err := s.asynqClient.Enqueue(task)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue insights refresh task")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue unavailable"})
		return
	}

	s.logger.Info().
		Str("task_id", info.ID).
		Str("triggered_by", sessionData.UserID).
		Msg("Insights refresh enqueued")

	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID})
}
