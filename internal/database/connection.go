// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendora/marketplace-backend/internal/config"
	"github.com/vendora/marketplace-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error

	// TranslateError surfaces unique violations as gorm.ErrDuplicatedKey,
	// which the services rely on as the backstop for slug and pairing checks.
	gormConfig := &gorm.Config{
		TranslateError: true,
	}

	if cfg.LogLevel == "silent" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	}

	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.Seller{},
		&models.Payout{},
		&models.Review{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.CreditTransaction{},
		&models.Badge{},
		&models.UserBadge{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// Service indexes
		"CREATE INDEX IF NOT EXISTS idx_services_category ON services(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_services_status ON services(status)",
		"CREATE INDEX IF NOT EXISTS idx_services_featured ON services(is_featured) WHERE is_featured",
		"CREATE INDEX IF NOT EXISTS idx_services_order ON services(display_order, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_services_created_at ON services(created_at DESC)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_service_categories_parent ON service_categories(parent_id)",
		"CREATE INDEX IF NOT EXISTS idx_service_categories_order ON service_categories(display_order, created_at DESC)",

		// Seller and payout indexes
		"CREATE INDEX IF NOT EXISTS idx_sellers_status ON sellers(status)",
		"CREATE INDEX IF NOT EXISTS idx_payouts_seller_status ON payouts(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_payouts_period ON payouts(period_start, period_end)",
		"CREATE INDEX IF NOT EXISTS idx_payouts_created_at ON payouts(created_at DESC)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_service_status ON reviews(service_id, status)",

		// Subscription and ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_user_status ON subscriptions(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_credit_transactions_user ON credit_transactions(user_id, created_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",

		// Full-text search indexes
		"CREATE INDEX IF NOT EXISTS idx_services_search ON services USING GIN(to_tsvector('english', name || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleSuperAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@vendora.dev",
			Role:     models.UserRoleSuperAdmin,
			Status:   models.UserStatusActive,
			ProfileData: models.JSONB{
				"first_name": "System",
				"last_name":  "Administrator",
			},
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	// Default subscription plans
	defaultPlans := []models.SubscriptionPlan{
		{
			Name:            "Starter",
			Slug:            "starter",
			Description:     "Entry plan with a monthly credit grant",
			Price:           9.99,
			CreditsPerCycle: 100,
			CycleDays:       30,
			IsActive:        true,
		},
		{
			Name:            "Professional",
			Slug:            "professional",
			Description:     "For active buyers and sellers",
			Price:           29.99,
			CreditsPerCycle: 400,
			CycleDays:       30,
			IsActive:        true,
		},
	}

	for _, plan := range defaultPlans {
		var count int64
		db.Model(&models.SubscriptionPlan{}).Where("slug = ?", plan.Slug).Count(&count)

		if count == 0 {
			if err := db.Create(&plan).Error; err != nil {
				log.Printf("Warning: Failed to create plan %s: %v", plan.Slug, err)
			}
		}
	}

	// Default root categories
	defaultCategories := []models.ServiceCategory{
		{Name: "Design", Slug: "design", DisplayOrder: 1, IsActive: true},
		{Name: "Development", Slug: "development", DisplayOrder: 2, IsActive: true},
		{Name: "Marketing", Slug: "marketing", DisplayOrder: 3, IsActive: true},
	}

	for _, category := range defaultCategories {
		var count int64
		db.Model(&models.ServiceCategory{}).Where("slug = ?", category.Slug).Count(&count)

		if count == 0 {
			if err := db.Create(&category).Error; err != nil {
				log.Printf("Warning: Failed to create category %s: %v", category.Slug, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
