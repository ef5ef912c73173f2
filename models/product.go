package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	Id          string  `json:"id" gorm:"primaryKey"`
	BusinessId  string  `json:"-" gorm:"not null;index:idx_products_business_active,priority:1"`
	Name        string  `json:"name" gorm:"not null"`
	Price       float64 `json:"price" gorm:"type:numeric(12,2)"`
	Stock       int     `json:"stock"`
	Description string  `json:"description"`
	ImageUrl    string  `json:"image_url"`
	Active      bool    `json:"active" gorm:"default:true;index:idx_products_business_active,priority:2"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (product *Product) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	product.Id = uuid.NewString()
	return
}
