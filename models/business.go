package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Business is the tenant: one onboarded seller account. Every provider
// credential is an opaque per-row string; nothing is shared across tenants.
type Business struct {
	Id           string `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"unique;not null"`
	PasswordHash []byte `json:"-" gorm:"not null"`
	Phone        string `json:"phone"`
	BusinessType string `json:"business_type"`
	Description  string `json:"description"`

	// Payment provider (Stripe)
	StripeSecretKey      string `json:"-"`
	StripeWebhookSecret  string `json:"-"`
	StripePublishableKey string `json:"stripe_publishable_key"`

	// Messaging provider (UltraMsg / WhatsApp)
	WhatsappNumber     string `json:"whatsapp_number"`
	UltramsgInstanceId string `json:"-" gorm:"index"`
	UltramsgToken      string `json:"-"`

	// Model provider
	AnthropicApiKey      string `json:"-"`
	AssistantPersonality string `json:"assistant_personality"`

	Active              bool `json:"active" gorm:"default:true"`
	OnboardingCompleted bool `json:"onboarding_completed" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (business *Business) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	business.Id = uuid.NewString()
	return
}

func (business *Business) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	business.PasswordHash = hashedPassword
}

func (business *Business) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(business.PasswordHash, []byte(password))
}

// HasMessagingCredentials reports whether outbound WhatsApp sends can be
// attempted at all.
func (business *Business) HasMessagingCredentials() bool {
	return business.UltramsgInstanceId != "" && business.UltramsgToken != ""
}
