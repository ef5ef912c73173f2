package controllers

import (
	"salesassistant-backend/database"
	"salesassistant-backend/middlewares"
	"salesassistant-backend/models"
	"salesassistant-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetConversations lists the tenant's conversations, newest activity first.
func GetConversations(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 20)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	query := db.Where("business_id = ?", businessID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var conversations []models.Conversation
	if err := query.Order("last_message_at DESC").
		Limit(limit).Offset(offset).
		Find(&conversations).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list conversations")
	}

	return c.JSON(fiber.Map{"conversations": conversations})
}

// GetConversation returns one owned conversation.
func GetConversation(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	var conversation models.Conversation
	if err := db.Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		First(&conversation).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "conversation not found",
		})
	}

	return c.JSON(fiber.Map{"conversation": conversation})
}

// SearchConversations filters by a free-text term matched against the customer
// phone or any message content, newest activity first.
func SearchConversations(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 20)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	query := db.Where("business_id = ?", businessID)
	if q := c.Query("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(
			`LOWER(customer_phone) LIKE LOWER(?) OR EXISTS (
				SELECT 1 FROM messages
				WHERE messages.conversation_id = conversations.id
				  AND LOWER(messages.content) LIKE LOWER(?)
			)`, pattern, pattern)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var conversations []models.Conversation
	if err := query.Order("last_message_at DESC").
		Limit(limit).Offset(offset).
		Find(&conversations).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not search conversations")
	}

	return c.JSON(fiber.Map{"conversations": conversations})
}

// GetConversationStats aggregates conversation counters for the tenant.
func GetConversationStats(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	var total, active, closed, today int64
	db.Model(&models.Conversation{}).Where("business_id = ?", businessID).Count(&total)
	db.Model(&models.Conversation{}).
		Where("business_id = ? AND status = ?", businessID, models.ConversationActive).
		Count(&active)
	db.Model(&models.Conversation{}).
		Where("business_id = ? AND status = ?", businessID, models.ConversationClosed).
		Count(&closed)
	db.Model(&models.Conversation{}).
		Where("business_id = ? AND DATE(created_at) = CURRENT_DATE", businessID).
		Count(&today)

	var avgMessages float64
	db.Raw(`SELECT COALESCE(AVG(message_count), 0) FROM (
	          SELECT COUNT(messages.id) AS message_count
	          FROM conversations
	          LEFT JOIN messages ON messages.conversation_id = conversations.id
	          WHERE conversations.business_id = ?
	          GROUP BY conversations.id
	        ) AS per_conversation`, businessID).Scan(&avgMessages)

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"total":        total,
			"active":       active,
			"closed":       closed,
			"today":        today,
			"avg_messages": avgMessages,
		},
	})
}

// GetConversationMessages returns the full message history of one owned
// conversation, oldest first. Ownership check first: a conversation under
// another tenant answers exactly like a missing one.
func GetConversationMessages(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	var conversation models.Conversation
	if err := db.Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		First(&conversation).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "conversation not found",
		})
	}

	var messages []models.Message
	if err := db.Where("conversation_id = ?", conversation.Id).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list messages")
	}

	return c.JSON(fiber.Map{"messages": messages})
}

type ConversationStatusInput struct {
	Status string `json:"status" validate:"required,oneof=active closed pending"`
}

// SetConversationStatus moves the conversation to any valid status, scoped to
// the owning tenant.
func SetConversationStatus(c *fiber.Ctx) error {
	var input ConversationStatusInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	res := db.Model(&models.Conversation{}).
		Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		Update("status", input.Status)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update conversation status")
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "conversation not found",
		})
	}

	var conversation models.Conversation
	db.Where("id = ? AND business_id = ?", c.Params("id"), businessID).First(&conversation)
	return c.JSON(fiber.Map{
		"message":      "conversation status updated successfully",
		"conversation": conversation,
	})
}

// CloseConversation transitions the conversation to closed, scoped to the
// owning tenant.
func CloseConversation(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	res := db.Model(&models.Conversation{}).
		Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		Update("status", models.ConversationClosed)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not close conversation")
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "conversation not found",
		})
	}

	return c.JSON(fiber.Map{"message": "conversation closed successfully"})
}
