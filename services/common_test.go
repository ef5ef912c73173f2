package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"salesassistant-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Business{},
		&models.Product{},
		&models.Conversation{},
		&models.Message{},
		&models.Sale{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedBusiness creates a tenant with messaging and model credentials set.
// Callers blank out fields to simulate partial onboarding.
func seedBusiness(t *testing.T, db *gorm.DB) *models.Business {
	t.Helper()
	business := models.Business{
		Name:               "Taco Corner",
		Email:              fmt.Sprintf("owner%d@example.com", testDBSeq.Add(1)),
		PasswordHash:       []byte("x"),
		BusinessType:       "restaurant",
		UltramsgInstanceId: "inst42",
		UltramsgToken:      "tok-42",
		AnthropicApiKey:    "sk-ant-test",
		StripeSecretKey:    "sk_test_123",
		Active:             true,
	}
	if err := db.Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return &business
}

func seedProduct(t *testing.T, db *gorm.DB, businessId, name string, price float64, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		BusinessId: businessId,
		Name:       name,
		Price:      price,
		Stock:      stock,
		Active:     true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product %q: %v", name, err)
	}
	return &product
}
