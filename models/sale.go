package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SalePending   = "pending"
	SaleCompleted = "completed"
	SaleCancelled = "cancelled"

	// SaleRefunded is reserved for manual refund tooling; the reconciliation
	// webhook only carries checkout session events, which never move a sale
	// past completed.
	SaleRefunded = "refunded"
)

// SaleItem is the snapshot of one purchased line at session-creation time.
// The snapshot, not the live catalog, drives the later stock decrement.
type SaleItem struct {
	ProductId string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Sale struct {
	Id              string         `json:"id" gorm:"primaryKey"`
	BusinessId      string         `json:"-" gorm:"not null;index"`
	ConversationId  string         `json:"conversation_id"`
	CustomerPhone   string         `json:"customer_phone" gorm:"not null"`
	Amount          float64        `json:"amount" gorm:"type:numeric(12,2)"`
	Currency        string         `json:"currency" gorm:"type:VARCHAR(10);default:usd"`
	StripeSessionId string         `json:"stripe_session_id" gorm:"index"`
	Items           datatypes.JSON `json:"items" gorm:"type:jsonb"`
	Status          string         `json:"status" gorm:"type:VARCHAR(20);default:pending"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (sale *Sale) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	sale.Id = uuid.NewString()
	return
}
