package database

import (
	"errors"

	"salesassistant-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetRequestDB returns the *gorm.DB bound to the current request.
// Prefer the per-request TX (middlewares.RequestTx), else the shared handle.
func GetRequestDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	return DB, nil
}

// GetBusinessByRoutingKey maps an inbound messaging event to its owning
// business via the UltraMsg instance id the event was delivered for.
func GetBusinessByRoutingKey(db *gorm.DB, instanceId string) (*models.Business, error) {
	var business models.Business
	err := db.Where("ultramsg_instance_id = ? AND active = ?", instanceId, true).
		First(&business).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func GetBusinessById(db *gorm.DB, id string) (*models.Business, error) {
	var business models.Business
	if err := db.Where("id = ?", id).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// GetActiveCatalog returns the sellable slice of a tenant's products:
// active AND in stock.
func GetActiveCatalog(db *gorm.DB, businessId string) ([]models.Product, error) {
	var products []models.Product
	err := db.Where("business_id = ? AND active = ? AND stock > 0", businessId, true).
		Order("created_at").
		Find(&products).Error
	return products, err
}

// GetCatalogItem re-reads one sellable product scoped to its owner. A miss and
// a cross-tenant reference are indistinguishable (ErrRecordNotFound).
func GetCatalogItem(db *gorm.DB, id, businessId string) (*models.Product, error) {
	var product models.Product
	err := db.Where("id = ? AND business_id = ? AND active = ? AND stock > 0", id, businessId, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts qty guarded by the current stock level, so a racing
// manual edit can never drive stock negative. Returns the number of rows
// actually changed (0 means the guard rejected the decrement).
func DecrementStock(db *gorm.DB, itemId string, qty int) (int64, error) {
	res := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", itemId, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected, res.Error
}
