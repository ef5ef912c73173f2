package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ConversationActive  = "active"
	ConversationClosed  = "closed"
	ConversationPending = "pending"
)

// Conversation is the thread between one business and one customer phone.
// Context is a flat key-value blob carried into every prompt. Recognized keys:
// "customer_name", "interested_product", "stage", "notes". Keep values scalar
// so the serialized form stays stable.
type Conversation struct {
	Id            string            `json:"id" gorm:"primaryKey"`
	BusinessId    string            `json:"-" gorm:"not null;index"`
	CustomerPhone string            `json:"customer_phone" gorm:"not null"`
	CustomerName  string            `json:"customer_name"`
	Status        string            `json:"status" gorm:"type:VARCHAR(20);default:active"`
	LastMessageAt time.Time         `json:"last_message_at"`
	Context       datatypes.JSONMap `json:"context" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (conversation *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	conversation.Id = uuid.NewString()
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = time.Now().UTC()
	}
	return
}
