package workers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/insightd-dev/insightd/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, name, email, status string) models.Customer {
	t.Helper()
	customer := models.Customer{Name: name, Email: email, Region: "EU", Status: status}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedSale(t *testing.T, db *gorm.DB, customerID, product, region string, amount float64, soldAt time.Time) {
	t.Helper()
	sale := models.Sale{CustomerID: customerID, Product: product, Amount: amount, Region: region, SoldAt: soldAt}
	require.NoError(t, db.Create(&sale).Error)
}

func findInsight(insights []models.Insight, kind string) *models.Insight {
	for i := range insights {
		if insights[i].Kind == kind {
			return &insights[i]
		}
	}
	return nil
}

func TestComputeInsights_EmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	insights, err := ComputeInsights(db)
	require.NoError(t, err)
	require.Empty(t, insights)
}

func TestComputeInsights(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	active := seedCustomer(t, db, "Acme", "acme@example.com", "active")
	dormant := seedCustomer(t, db, "Dormant", "dormant@example.com", "active")
	seedCustomer(t, db, "Closed", "closed@example.com", "inactive")

	// This week: 300, previous week: 200, so the trend is up 50%
	seedSale(t, db, active.ID, "Widget", "EU", 200, now.AddDate(0, 0, -2))
	seedSale(t, db, active.ID, "Gadget", "US", 100, now.AddDate(0, 0, -3))
	seedSale(t, db, active.ID, "Widget", "EU", 200, now.AddDate(0, 0, -10))

	// Dormant customer's only sale is outside the churn window
	seedSale(t, db, dormant.ID, "Widget", "EU", 50, now.AddDate(0, 0, -60))

	insights, err := ComputeInsights(db)
	require.NoError(t, err)

	trend := findInsight(insights, "revenue_trend")
	require.NotNil(t, trend)
	require.Contains(t, trend.Title, "up 50.0%")

	topProduct := findInsight(insights, "top_product")
	require.NotNil(t, topProduct)
	require.Contains(t, topProduct.Title, "Widget")

	topRegion := findInsight(insights, "top_region")
	require.NotNil(t, topRegion)
	require.Contains(t, topRegion.Title, "EU")

	churn := findInsight(insights, "churn_risk")
	require.NotNil(t, churn)
	require.Contains(t, churn.Title, "1 customers at churn risk")
}

func TestComputeInsights_NoTrendWithoutBaseline(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	customer := seedCustomer(t, db, "Acme", "acme@example.com", "active")
	// Sales only in the current week; the week before is empty
	seedSale(t, db, customer.ID, "Widget", "EU", 100, now.AddDate(0, 0, -1))

	insights, err := ComputeInsights(db)
	require.NoError(t, err)

	require.Nil(t, findInsight(insights, "revenue_trend"))
	require.NotNil(t, findInsight(insights, "top_product"))
}

func TestNotifyAdmins(t *testing.T) {
	db := newTestDB(t)

	admin := models.User{Email: "admin@example.com", PasswordHash: "x", Name: "Admin", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	user := models.User{Email: "user@example.com", PasswordHash: "x", Name: "User", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, notifyAdmins(db, 3))

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, admin.ID, notifications[0].UserID)
	require.Equal(t, "Insights refreshed", notifications[0].Title)
}
