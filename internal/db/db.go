// Package db opens the database, applies the schema and seeds the
// initial admin account.
package db

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soundscene/accounts/internal/config"
	"github.com/soundscene/accounts/internal/models"
)

// Connect opens the database behind the DSN, retrying briefly so a
// containerized Postgres has time to come up.
func Connect(cfg config.Config) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DatabaseDSN)
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is empty")
	}

	logLevel := logger.Silent
	if cfg.Env == "development" {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	open := func() (*gorm.DB, error) {
		if IsSQLite(dsn) {
			return gorm.Open(sqlite.Open(dsn), gormCfg)
		}
		return gorm.Open(postgres.Open(dsn), gormCfg)
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = open()
		if err == nil {
			break
		}
		log.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after retries: %w", err)
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	return conn, nil
}

// Migrate applies the schema. With cfg.Migrations set the SQL files in
// ./migrations run via golang-migrate; otherwise AutoMigrate keeps the
// dev loop simple.
func Migrate(conn *gorm.DB, cfg config.Config) error {
	if cfg.Migrations && !IsSQLite(NormalizeDSN(cfg.DatabaseDSN)) {
		if err := runSQLMigrations(NormalizeDSN(cfg.DatabaseDSN)); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := conn.AutoMigrate(&models.User{}, &models.Profile{}); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}

	for _, table := range []string{"users", "profiles"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// SeedAdmin creates the initial admin account when the seed env vars
// are configured and the account does not exist yet.
func SeedAdmin(conn *gorm.DB, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))

	var count int64
	if err := conn.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin account: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Email:    email,
		Username: "admin",
		Name:     "Administrator",
		Password: string(hashed),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{UserID: admin.ID}).Error
	})
}
