package controllers

import (
	"errors"

	"salesassistant-backend/database"
	"salesassistant-backend/middlewares"
	"salesassistant-backend/models"
	"salesassistant-backend/services"
	"salesassistant-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PaymentLinkInput struct {
	Products       []services.CartLine `json:"products" validate:"required,min=1,dive"`
	CustomerPhone  string              `json:"customer_phone" validate:"required"`
	ConversationId string              `json:"conversation_id"`
	SuccessURL     string              `json:"success_url" validate:"omitempty,url"`
	CancelURL      string              `json:"cancel_url" validate:"omitempty,url"`
}

// CreatePaymentLink verifies the cart against live catalog rows, opens a
// Stripe checkout session and records the pending sale.
func CreatePaymentLink(c *fiber.Ctx) error {
	var input PaymentLinkInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
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

	result, err := checkout.CreatePaymentLink(db, business, input.Products,
		input.CustomerPhone, input.ConversationId, input.SuccessURL, input.CancelURL)
	if err != nil {
		var cartErr *services.CartError
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "products required",
			})
		case errors.Is(err, services.ErrPaymentsNotConfigured):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Stripe not configured for this business",
			})
		case errors.As(err, &cartErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": cartErr.Error(),
				"product": cartErr.ProductId,
			})
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "could not create payment link")
		}
	}

	return c.JSON(result)
}

// StripeWebhook reconciles one checkout session callback. The tenant is
// routed by the explicit business id in the URL; the Stripe-Signature header
// is used purely for verification against that tenant's webhook secret.
func StripeWebhook(c *fiber.Ctx) error {
	businessID := c.Params("businessId")

	business, err := database.GetBusinessById(database.DB, businessID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "business not found",
		})
	}
	if business.StripeWebhookSecret == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "webhook secret not configured",
		})
	}

	event, err := checkout.Gateway.VerifyWebhook(
		c.Body(), c.Get("Stripe-Signature"), business.StripeWebhookSecret)
	if err != nil {
		zap.L().Warn("webhook verification failed",
			zap.String("business_id", business.Id),
			zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "webhook verification failed",
		})
	}

	if err := checkout.Reconcile(database.DB, business.Id, event); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not process webhook")
	}

	return c.JSON(fiber.Map{"received": true})
}

// GetSales lists the tenant's sales, newest first.
func GetSales(c *fiber.Ctx) error {
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

	var sales []models.Sale
	if err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&sales).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list sales")
	}

	return c.JSON(fiber.Map{"sales": sales})
}

// GetSalesStats aggregates counters and revenue (all-time, today, this month).
func GetSalesStats(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	var total, completed int64
	var revenue float64
	db.Model(&models.Sale{}).Where("business_id = ?", businessID).Count(&total)
	db.Model(&models.Sale{}).
		Where("business_id = ? AND status = ?", businessID, models.SaleCompleted).
		Count(&completed)
	db.Model(&models.Sale{}).
		Where("business_id = ? AND status = ?", businessID, models.SaleCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&revenue)

	type bucket struct {
		Count   int64
		Revenue float64
	}
	var today, month bucket
	db.Raw(`SELECT COUNT(*) AS count, COALESCE(SUM(amount), 0) AS revenue
	        FROM sales WHERE business_id = ? AND DATE(created_at) = CURRENT_DATE`,
		businessID).Scan(&today)
	db.Raw(`SELECT COUNT(*) AS count, COALESCE(SUM(amount), 0) AS revenue
	        FROM sales WHERE business_id = ?
	          AND DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)`,
		businessID).Scan(&month)

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"total":         total,
			"completed":     completed,
			"revenue":       revenue,
			"today":         today.Count,
			"today_revenue": today.Revenue,
			"month":         month.Count,
			"month_revenue": month.Revenue,
		},
	})
}
