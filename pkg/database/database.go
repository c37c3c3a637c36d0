package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vwa-api/pkg/config"
	"vwa-api/pkg/models"
)

// Connect opens a PostgreSQL connection and configures the pool. The returned
// handle is passed explicitly to every component; there is no package-level
// database state.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseURL()

	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLife)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Asset{},
		&models.TradeOrder{},
		&models.PriceHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// SeedData creates initial data for development environments
func SeedData(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	users := []models.User{
		{
			WalletAddress: "FvQrmXgudMBsCDnrjzt5R2QqZCCYMXDtyGgTJCwEVTWk",
			Username:      models.StringPtr("alice"),
			IsActive:      true,
		},
		{
			WalletAddress: "9ZNTfG4NyQgxy2SWjSiQoUyBPEvXT2xo7fKc5hPYYJ7b",
			Username:      models.StringPtr("bob"),
			IsActive:      true,
		},
	}

	for i := range users {
		var existing models.User
		result := db.Where("wallet_address = ?", users[i].WalletAddress).First(&existing)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				if err := db.Create(&users[i]).Error; err != nil {
					return fmt.Errorf("failed to create user %s: %w", users[i].WalletAddress, err)
				}

				asset := models.Asset{
					OwnerID:      users[i].ID,
					AssetType:    models.AssetTypeGold,
					Weight:       models.DecimalFromString("31.1"),
					Purity:       models.DecimalFromString("99.99"),
					CurrentPrice: models.DecimalFromString("2000"),
					IsActive:     true,
				}
				if err := db.Create(&asset).Error; err != nil {
					return fmt.Errorf("failed to create seed asset for %s: %w", users[i].WalletAddress, err)
				}
			} else {
				return fmt.Errorf("failed to check user %s: %w", users[i].WalletAddress, result.Error)
			}
		}
	}

	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// HealthCheck verifies database connectivity
func HealthCheck(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
