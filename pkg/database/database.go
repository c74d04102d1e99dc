package database

import (
	"fmt"

	"pos-service/internal/model"
	"pos-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the PostgreSQL connection, runs migrations and seeds the store table
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var err error

	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := db.AutoMigrate(&model.Store{}, &model.Product{}, &model.Order{}, &model.OrderItem{}); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := SeedStores(db); err != nil {
		return nil, err
	}

	return db, nil
}

// SeedStores inserts the fixed store rows, keeping any existing names
func SeedStores(db *gorm.DB) error {
	stores := make([]model.Store, len(model.Stores))
	copy(stores, model.Stores)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&stores).Error; err != nil {
		return fmt.Errorf("failed to seed stores: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
