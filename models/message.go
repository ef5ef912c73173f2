package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SenderCustomer  = "customer"
	SenderAssistant = "assistant"

	MessageText        = "text"
	MessageImage       = "image"
	MessagePaymentLink = "payment_link"
)

// Message rows are immutable once written.
type Message struct {
	Id             string            `json:"id" gorm:"primaryKey"`
	ConversationId string            `json:"-" gorm:"not null;index:idx_messages_conversation_created,priority:1"`
	Content        string            `json:"content" gorm:"not null"`
	SenderType     string            `json:"sender_type" gorm:"type:VARCHAR(20);not null"`
	MessageType    string            `json:"message_type" gorm:"type:VARCHAR(20);default:text"`
	Metadata       datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"index:idx_messages_conversation_created,priority:2"`
}

func (message *Message) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	message.Id = uuid.NewString()
	return
}
