package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/insightd-dev/insightd/internal/models"
	"github.com/insightd-dev/insightd/internal/tasks"
)

type productRevenue struct {
	Product string
	Revenue float64
}

type regionRevenue struct {
	Region  string
	Revenue float64
}

// HandleInsightsRefresh recomputes the dashboard insights from sales
// data, replaces the stored insight rows and notifies admin users.
func HandleInsightsRefresh(ctx context.Context, task *asynq.Task, db *gorm.DB, log zerolog.Logger) error {
	payload, err := tasks.ParseInsightsRefreshPayload(task)
	if err != nil {
		return err
	}

	log.Info().Str("triggered_by", payload.TriggeredBy).Msg("Recomputing insights")

	insights, err := ComputeInsights(db)
	if err != nil {
		return fmt.Errorf("failed to compute insights: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Full replace: insights have no identity across runs
		if err := tx.Where("1 = 1").Delete(&models.Insight{}).Error; err != nil {
			return err
		}
		for i := range insights {
			if err := tx.Create(&insights[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store insights: %w", err)
	}

	now := time.Now().UTC()
	if err := db.Model(&models.Config{}).Where("1 = 1").
		Update("last_insights_at", now).Error; err != nil {
		log.Warn().Err(err).Msg("Failed to record last insights time")
	}

	if err := notifyAdmins(db, len(insights)); err != nil {
		log.Warn().Err(err).Msg("Failed to notify admins about refreshed insights")
	}

	log.Info().Int("insights", len(insights)).Msg("Insights refreshed")
	return nil
}

// ComputeInsights derives insight rows from the sales and customer
// tables. Pure read; the caller decides how to store the result.
func ComputeInsights(db *gorm.DB) ([]models.Insight, error) {
	now := time.Now().UTC()
	var insights []models.Insight

	// Revenue trend: this week vs the week before
	var thisWeek, lastWeek float64
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)
	if err := db.Model(&models.Sale{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("sold_at >= ?", weekAgo).
		Scan(&thisWeek).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Sale{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("sold_at >= ? AND sold_at < ?", twoWeeksAgo, weekAgo).
		Scan(&lastWeek).Error; err != nil {
		return nil, err
	}

	if lastWeek > 0 {
		change := (thisWeek - lastWeek) / lastWeek * 100
		direction := "up"
		if change < 0 {
			direction = "down"
		}
		insights = append(insights, models.Insight{
			Kind:        "revenue_trend",
			Title:       fmt.Sprintf("Weekly revenue %s %.1f%%", direction, abs(change)),
			Body:        fmt.Sprintf("Revenue this week: %.2f, previous week: %.2f", thisWeek, lastWeek),
			Score:       0.9,
			GeneratedAt: now,
		})
	}

	// Top product by revenue
	var topProduct productRevenue
	err := db.Model(&models.Sale{}).
		Select("product, SUM(amount) AS revenue").
		Group("product").
		Order("revenue DESC").
		Limit(1).
		Scan(&topProduct).Error
	if err != nil {
		return nil, err
	}
	if topProduct.Product != "" {
		insights = append(insights, models.Insight{
			Kind:        "top_product",
			Title:       fmt.Sprintf("Best seller: %s", topProduct.Product),
			Body:        fmt.Sprintf("%s generated %.2f in total revenue", topProduct.Product, topProduct.Revenue),
			Score:       0.8,
			GeneratedAt: now,
		})
	}

	// Top region by revenue
	var topRegion regionRevenue
	err = db.Model(&models.Sale{}).
		Select("region, SUM(amount) AS revenue").
		Where("region != ''").
		Group("region").
		Order("revenue DESC").
		Limit(1).
		Scan(&topRegion).Error
	if err != nil {
		return nil, err
	}
	if topRegion.Region != "" {
		insights = append(insights, models.Insight{
			Kind:        "top_region",
			Title:       fmt.Sprintf("Strongest region: %s", topRegion.Region),
			Body:        fmt.Sprintf("%s accounts for %.2f in revenue", topRegion.Region, topRegion.Revenue),
			Score:       0.7,
			GeneratedAt: now,
		})
	}

	// Churn risk: customers with no sale in the last 30 days
	var atRisk int64
	monthAgo := now.AddDate(0, 0, -30)
	err = db.Model(&models.Customer{}).
		Where("status = ?", "active").
		Where("id NOT IN (?)", db.Model(&models.Sale{}).
			Select("customer_id").
			Where("sold_at >= ?", monthAgo)).
		Count(&atRisk).Error
	if err != nil {
		return nil, err
	}
	if atRisk > 0 {
		insights = append(insights, models.Insight{
			Kind:        "churn_risk",
			Title:       fmt.Sprintf("%d customers at churn risk", atRisk),
			Body:        fmt.Sprintf("%d active customers made no purchase in the last 30 days", atRisk),
			Score:       0.6,
			GeneratedAt: now,
		})
	}

	return insights, nil
}

func notifyAdmins(db *gorm.DB, insightCount int) error {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		return err
	}

	for _, admin := range admins {
		notification := &models.Notification{
			UserID: admin.ID,
			Title:  "Insights refreshed",
			Body:   fmt.Sprintf("%d insights were recomputed from the latest sales data", insightCount),
		}
		if err := db.Create(notification).Error; err != nil {
			return err
		}
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
