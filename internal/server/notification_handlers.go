package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/insightd-dev/insightd/internal/models"
)

// listNotifications returns the current user's notifications, newest first
func (s *Server) listNotifications(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", sessionData.UserID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// markNotificationRead marks one of the current user's notifications as read
func (s *Server) markNotificationRead(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	notificationID := c.Param("id")

	var notification models.Notification
	err := s.db.Where("id = ? AND user_id = ?", notificationID, sessionData.UserID).
		First(&notification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if notification.ReadAt == nil {
		now := time.Now().UTC()
		notification.ReadAt = &now
		if err := s.db.Save(&notification).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update notification")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, notification)
}
