package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Distinguished user roles. Role is a free-form string; "admin" is the
// only value with special meaning (admin-only routes).
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config is the global server configuration singleton (only one row
// should exist). The JWT secret is auto-generated on first start.
type Config struct {
	BaseModel
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // 64 hex chars

	// InsightSchedule is a cron expression for periodic insight
	// recomputation, e.g. "0 6 * * *". Empty disables the scheduler.
	InsightSchedule string     `json:"insight_schedule"`
	LastInsightsAt  *time.Time `json:"last_insights_at"`
	NextInsightsAt  *time.Time `json:"next_insights_at"`
}

// User represents a local user account (self-hosted, no external auth)
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	Role         string    `json:"role" gorm:"not null;default:user"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sale represents a single completed sale
type Sale struct {
	BaseModel
	CustomerID string    `json:"customer_id"`
	Product    string    `json:"product" gorm:"not null"`
	Amount     float64   `json:"amount" gorm:"not null"`
	Region     string    `json:"region"`
	SoldAt     time.Time `json:"sold_at" gorm:"not null;index"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
}

// Customer represents a business customer
type Customer struct {
	BaseModel
	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"unique;not null"`
	Company string `json:"company"`
	Region  string `json:"region"`
	Status  string `json:"status" gorm:"not null;default:active"` // active, inactive
}

// Insight is a computed analytics finding shown on the dashboard.
// Rows are fully replaced by each insights:refresh run.
type Insight struct {
	BaseModel
	Kind        string    `json:"kind" gorm:"not null"` // revenue_trend, top_product, top_region, churn_risk
	Title       string    `json:"title" gorm:"not null"`
	Body        string    `json:"body" gorm:"type:text"`
	Score       float64   `json:"score"` // confidence 0..1
	GeneratedAt time.Time `json:"generated_at" gorm:"not null;index"`
}

// Notification is a per-user message, e.g. "insights refreshed"
type Notification struct {
	BaseModel
	UserID string     `json:"user_id" gorm:"not null;index"`
	Title  string     `json:"title" gorm:"not null"`
	Body   string     `json:"body" gorm:"type:text"`
	ReadAt *time.Time `json:"read_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{}, &Config{}, &Sale{}, &Customer{}, &Insight{}, &Notification{},
	)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
