package routes

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesassistant-backend/controllers"
	"salesassistant-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/auth/register", controllers.Register)
	api.Post("/auth/login", controllers.Login)

	// Provider callbacks; authenticated by routing key / signature, not JWT
	api.Post("/whatsapp/webhook", controllers.WhatsappWebhook)
	api.Post("/stripe/webhook/:businessId", controllers.StripeWebhook)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request transaction (commits/rolls back around the handler)
	protected.Use(middlewares.RequestTx())

	protected.Get("/auth/profile", controllers.Profile)

	// Business profile and assistant settings
	protected.Get("/business", controllers.GetBusiness)
	protected.Put("/business", controllers.UpdateBusiness)
	protected.Put("/business/personality", controllers.SetAssistantPersonality)

	// Products
	protected.Post("/products", controllers.CreateProduct)
	protected.Get("/products", controllers.GetProducts)
	protected.Get("/products/:id", controllers.GetProduct)
	protected.Put("/products/:id", controllers.UpdateProduct)
	protected.Delete("/products/:id", controllers.DeleteProduct)
	protected.Put("/products/:id/stock", controllers.UpdateStock)
	protected.Post("/products/import", controllers.ImportProducts)

	// Conversations (fixed paths before the :id routes)
	protected.Get("/conversations", controllers.GetConversations)
	protected.Get("/conversations/search", controllers.SearchConversations)
	protected.Get("/conversations/stats/summary", controllers.GetConversationStats)
	protected.Get("/conversations/:id", controllers.GetConversation)
	protected.Get("/conversations/:id/messages", controllers.GetConversationMessages)
	protected.Put("/conversations/:id/status", controllers.SetConversationStatus)
	protected.Put("/conversations/:id/close", controllers.CloseConversation)

	// Manual outbound messaging
	protected.Post("/whatsapp/send", controllers.SendMessage)
	protected.Get("/whatsapp/status", controllers.WhatsappStatus)

	// Payments and sales
	protected.Post("/stripe/create-payment-link", controllers.CreatePaymentLink)
	protected.Get("/stripe/sales", controllers.GetSales)
	protected.Get("/stripe/sales/stats", controllers.GetSalesStats)
}
