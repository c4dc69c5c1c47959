// internal/services/testdb_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendora/marketplace-backend/internal/models"
)

// newTestDB opens a named in-memory database so each suite gets its own
// isolated store that survives connection pooling.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Email:    username + "@example.com",
		Username: username,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(user).Error)

	return user
}
