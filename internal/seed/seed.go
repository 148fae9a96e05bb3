// Package seed loads demo fixtures from a YAML file into the database.
// Intended for demo and development deployments only; production
// instances run without a seed file.
package seed

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/insightd-dev/insightd/internal/auth"
	"github.com/insightd-dev/insightd/internal/models"
)

// File is the top-level structure of a seed YAML file
type File struct {
	Users     []UserFixture     `yaml:"users"`
	Customers []CustomerFixture `yaml:"customers"`
	Sales     []SaleFixture     `yaml:"sales"`
}

// UserFixture describes a user account to create
type UserFixture struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// CustomerFixture describes a customer record to create
type CustomerFixture struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Company string `yaml:"company"`
	Region  string `yaml:"region"`
	Status  string `yaml:"status"`
}

// SaleFixture describes a sale record to create
type SaleFixture struct {
	CustomerEmail string    `yaml:"customer_email"`
	Product       string    `yaml:"product"`
	Amount        float64   `yaml:"amount"`
	Region        string    `yaml:"region"`
	SoldAt        time.Time `yaml:"sold_at"`
}

// Apply loads the fixture file at path and inserts any records that do
// not already exist. Users and customers are matched by email, so
// re-running against the same database is safe.
func Apply(db *gorm.DB, path string, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, fixture := range file.Users {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", fixture.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check user %s: %w", fixture.Email, err)
		}
		if count > 0 {
			continue
		}

		hash, err := auth.HashPassword(fixture.Password)
		if err != nil {
			return err
		}

		role := fixture.Role
		if role == "" {
			role = models.RoleUser
		}

		user := &models.User{
			Email:        fixture.Email,
			Name:         fixture.Name,
			PasswordHash: hash,
			Role:         role,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", fixture.Email, err)
		}
		log.Info().Str("email", user.Email).Str("role", user.Role).Msg("Seeded user")
	}

	customersByEmail := make(map[string]string)
	for _, fixture := range file.Customers {
		var existing models.Customer
		err := db.Where("email = ?", fixture.Email).First(&existing).Error
		if err == nil {
			customersByEmail[existing.Email] = existing.ID
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check customer %s: %w", fixture.Email, err)
		}

		status := fixture.Status
		if status == "" {
			status = "active"
		}

		customer := &models.Customer{
			Name:    fixture.Name,
			Email:   fixture.Email,
			Company: fixture.Company,
			Region:  fixture.Region,
			Status:  status,
		}
		if err := db.Create(customer).Error; err != nil {
			return fmt.Errorf("failed to create customer %s: %w", fixture.Email, err)
		}
		customersByEmail[customer.Email] = customer.ID
	}

	// Sales are only seeded into an empty table; they have no natural key
	var saleCount int64
	if err := db.Model(&models.Sale{}).Count(&saleCount).Error; err != nil {
		return fmt.Errorf("failed to count sales: %w", err)
	}
	if saleCount == 0 {
		for _, fixture := range file.Sales {
			sale := &models.Sale{
				CustomerID: customersByEmail[fixture.CustomerEmail],
				Product:    fixture.Product,
				Amount:     fixture.Amount,
				Region:     fixture.Region,
				SoldAt:     fixture.SoldAt,
			}
			if sale.SoldAt.IsZero() {
				sale.SoldAt = time.Now().UTC()
			}
			if err := db.Create(sale).Error; err != nil {
				return fmt.Errorf("failed to create sale: %w", err)
			}
		}
	}

	log.Info().
		Int("users", len(file.Users)).
		Int("customers", len(file.Customers)).
		Int("sales", len(file.Sales)).
		Msg("Seed file applied")

	return nil
}
