package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/soundscene/accounts/internal/models"
)

// openTestDB opens a unique in-memory database per test name to avoid
// leakage via the shared cache.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Profile{}), "migrate")
	return db
}

// seedUser inserts a user plus profile directly, bypassing the signup
// flow, with a controllable creation timestamp.
func seedUser(t *testing.T, db *gorm.DB, username, email string, createdAt time.Time) *models.User {
	t.Helper()
	u := &models.User{
		Email:     email,
		Username:  username,
		Name:      "Test User",
		Password:  "$2a$10$notarealhashnotarealhashnotarea",
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(u).Error, "seed user %s", username)
	require.NoError(t, db.Create(&models.Profile{UserID: u.ID}).Error, "seed profile %s", username)
	return u
}
