package controllers

import (
	"salesassistant-backend/database"
	"salesassistant-backend/middlewares"
	"salesassistant-backend/models"
	"salesassistant-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type BusinessUpdateInput struct {
	Name                 *string `json:"name" validate:"omitempty,min=2,max=255"`
	Phone                *string `json:"phone"`
	BusinessType         *string `json:"business_type"`
	Description          *string `json:"description"`
	WhatsappNumber       *string `json:"whatsapp_number"`
	AssistantPersonality *string `json:"assistant_personality"`

	// Credential rotation; scoped to the authenticated tenant only.
	StripeSecretKey      *string `json:"stripe_secret_key"`
	StripeWebhookSecret  *string `json:"stripe_webhook_secret"`
	StripePublishableKey *string `json:"stripe_publishable_key"`
	UltramsgInstanceId   *string `json:"ultramsg_instance_id"`
	UltramsgToken        *string `json:"ultramsg_token"`
	AnthropicApiKey      *string `json:"anthropic_api_key"`
}

// GetBusiness returns the profile plus basic counters.
func GetBusiness(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	business, err := database.GetBusinessById(db, businessID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "business not found",
		})
	}

	var productsCount, conversationsCount, salesCount int64
	var revenue float64
	db.Model(&models.Product{}).Where("business_id = ?", businessID).Count(&productsCount)
	db.Model(&models.Conversation{}).Where("business_id = ?", businessID).Count(&conversationsCount)
	db.Model(&models.Sale{}).
		Where("business_id = ? AND status = ?", businessID, models.SaleCompleted).
		Count(&salesCount)
	db.Model(&models.Sale{}).
		Where("business_id = ? AND status = ?", businessID, models.SaleCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&revenue)

	return c.JSON(fiber.Map{
		"business": business,
		"stats": fiber.Map{
			"products":      productsCount,
			"conversations": conversationsCount,
			"sales":         salesCount,
			"total_revenue": revenue,
		},
	})
}

// UpdateBusiness applies a partial profile/credential update.
func UpdateBusiness(c *fiber.Ctx) error {
	var input BusinessUpdateInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	updates := utils.UpdatesFromPtrDTO(&input, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "no fields to update",
		})
	}

	res := db.Model(&models.Business{}).
		Where("id = ?", businessID).
		Updates(updates)
	if res.Error != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "could not update business",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "business not found",
		})
	}

	business, _ := database.GetBusinessById(db, businessID)
	return c.JSON(fiber.Map{
		"message":  "business updated successfully",
		"business": business,
	})
}

type PersonalityInput struct {
	Personality string `json:"personality" validate:"required"`
}

// SetAssistantPersonality stores the custom persona used by the prompt
// assembler instead of the generated default.
func SetAssistantPersonality(c *fiber.Ctx) error {
	var input PersonalityInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	res := db.Model(&models.Business{}).
		Where("id = ?", businessID).
		Update("assistant_personality", input.Personality)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update personality")
	}

	return c.JSON(fiber.Map{"message": "assistant personality updated"})
}
