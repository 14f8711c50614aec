package database

import (
	"fmt"
	"log"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB initializes the database connection with configuration and runs migrations
func InitDB(cfg *config.Config) error {
	var err error

	// Configure GORM logger
	logLevel := logger.Error
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  cfg.Database.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	// Open connection
	// TranslateError surfaces unique index violations as gorm.ErrDuplicatedKey,
	// which the minting retry loop depends on.
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return err
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get database object: %v", err)
		return err
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	fmt.Println("Database connected successfully")

	// Run migrations
	if err := MigrateModels(db); err != nil {
		return err
	}

	return nil
}

// MigrateModels runs migrations for every persisted model
func MigrateModels(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Product{},
		&model.Code{},
		&model.BulkRequest{},
		&model.BulkRequestRow{},
		&model.Scan{},
	); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}
