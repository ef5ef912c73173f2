package controllers

import (
	"errors"
	"strings"

	"salesassistant-backend/database"
	"salesassistant-backend/services"

	"github.com/gofiber/fiber/v2"
)

// whatsappEvent is the UltraMsg webhook envelope.
type whatsappEvent struct {
	EventType  string `json:"event_type"`
	InstanceId string `json:"instanceId"`
	Data       struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Body   string `json:"body"`
		Type   string `json:"type"`
		FromMe bool   `json:"fromMe"`
	} `json:"data"`
}

// normalizePhone strips the WhatsApp JID suffix ("123456@c.us" -> "123456").
func normalizePhone(jid string) string {
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		return jid[:i]
	}
	return jid
}

// WhatsappWebhook receives inbound customer messages and runs the message
// pipeline. The provider treats a 200 as final (no redelivery), so we
// acknowledge even when outbound dispatch failed — persistence already
// happened and is the source of truth.
func WhatsappWebhook(c *fiber.Ctx) error {
	var event whatsappEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid message payload",
		})
	}

	// Echoes of our own outbound messages come back through the same hook.
	if event.Data.FromMe {
		return c.JSON(fiber.Map{"success": true, "message": "ignored own message"})
	}

	pipeline := &services.Pipeline{
		DB:         database.DB,
		Replies:    replyGenerator,
		Dispatcher: dispatcher,
	}

	err := pipeline.HandleInbound(c.Context(), services.InboundMessage{
		InstanceId:    event.InstanceId,
		CustomerPhone: normalizePhone(event.Data.From),
		Body:          event.Data.Body,
	})
	switch {
	case errors.Is(err, services.ErrInvalidEvent):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "incomplete message data",
		})
	case errors.Is(err, services.ErrUnknownBusiness):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "business not found",
		})
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, "could not process message")
	}

	return c.JSON(fiber.Map{"success": true, "message": "message processed successfully"})
}

// WhatsappStatus probes the tenant's messaging instance connection.
func WhatsappStatus(c *fiber.Ctx) error {
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

	state, err := dispatcher.ConnectionState(c.Context(), business)
	if errors.Is(err, services.ErrMessagingNotConfigured) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "messaging not configured for this business",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "could not reach messaging provider",
		})
	}

	return c.JSON(fiber.Map{
		"connected": state == "open",
		"state":     state,
	})
}

type SendMessageInput struct {
	CustomerPhone string `json:"customer_phone" validate:"required"`
	Message       string `json:"message" validate:"required"`
}

// SendMessage lets the business push a manual outbound text.
func SendMessage(c *fiber.Ctx) error {
	var input SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if input.CustomerPhone == "" || input.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "customer phone and message are required",
		})
	}

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
	if !business.HasMessagingCredentials() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "messaging not configured for this business",
		})
	}

	if ok := dispatcher.SendText(c.Context(), business, input.CustomerPhone, input.Message); !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "could not send message",
		})
	}

	return c.JSON(fiber.Map{"message": "message sent successfully"})
}
