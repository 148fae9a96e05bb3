package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/insightd-dev/insightd/internal/models"
)

// DashboardResponse aggregates the headline numbers for the main view
type DashboardResponse struct {
	TotalRevenue    float64 `json:"total_revenue"`
	RevenueThisWeek float64 `json:"revenue_this_week"`
	SalesCount      int64   `json:"sales_count"`
	CustomerCount   int64   `json:"customer_count"`
	ActiveCustomers int64   `json:"active_customers"`
}

// getDashboard returns aggregate sales and customer numbers
func (s *Server) getDashboard(c *gin.Context) {
	var resp DashboardResponse

	if err := s.db.Model(&models.Sale{}).Count(&resp.SalesCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count sales")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// COALESCE so an empty table yields 0 instead of NULL
	if err := s.db.Model(&models.Sale{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&resp.TotalRevenue).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to sum revenue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if err := s.db.Model(&models.Sale{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("sold_at >= ?", weekAgo).
		Scan(&resp.RevenueThisWeek).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to sum weekly revenue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Model(&models.Customer{}).Count(&resp.CustomerCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count customers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Model(&models.Customer{}).
		Where("status = ?", "active").
		Count(&resp.ActiveCustomers).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count active customers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listSales returns recent sales, newest first
func (s *Server) listSales(c *gin.Context) {
	var sales []models.Sale
	if err := s.db.Preload("Customer").
		Order("sold_at DESC").
		Limit(200).
		Find(&sales).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list sales")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, sales)
}

// listCustomers returns all customers
func (s *Server) listCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := s.db.Order("created_at DESC").Find(&customers).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list customers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, customers)
}
