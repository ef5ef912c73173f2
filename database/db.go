package database

import (
	"fmt"

	"salesassistant-backend/config"
	"salesassistant-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&models.Business{},
		&models.Product{},
		&models.Conversation{},
		&models.Message{},
		&models.Sale{},
		&models.IdempotencyKey{},
	)
}
