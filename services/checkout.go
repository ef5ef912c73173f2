package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"salesassistant-backend/database"
	"salesassistant-backend/models"
	"salesassistant-backend/observability"
	"salesassistant-backend/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrPaymentsNotConfigured = errors.New("payment provider not configured for this business")
)

// CartError rejects one offending cart line; the line is named so the caller
// can tell the customer which product broke the checkout.
type CartError struct {
	ProductId string
	Reason    string
}

func (e *CartError) Error() string {
	return fmt.Sprintf("product %s: %s", e.ProductId, e.Reason)
}

// CartLine is one client-supplied cart entry. Prices never come from the
// client; only ids and quantities do.
type CartLine struct {
	ProductId string `json:"id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// CheckoutResult is returned to the caller after a session is opened.
type CheckoutResult struct {
	PaymentURL string  `json:"payment_url"`
	SessionId  string  `json:"session_id"`
	Amount     float64 `json:"amount"`
	SaleId     string  `json:"sale_id"`
}

// Checkout verifies carts against live catalog rows, opens provider sessions
// and records pending sales; Reconcile later applies the provider callback.
type Checkout struct {
	Gateway PaymentGateway

	// Redirect targets used when the request doesn't supply its own.
	DefaultSuccessURL string
	DefaultCancelURL  string
}

// CreatePaymentLink runs the synchronous half of the checkout pipeline.
// All-or-nothing: any unsellable line aborts before a session or Sale exists.
// A provider failure is a hard failure here — a half-created purchase is
// worse than a rejected one.
func (s *Checkout) CreatePaymentLink(db *gorm.DB, business *models.Business, cart []CartLine, customerPhone, conversationId, successURL, cancelURL string) (*CheckoutResult, error) {
	if len(cart) == 0 {
		observability.CheckoutSessions.WithLabelValues("rejected").Inc()
		return nil, ErrEmptyCart
	}
	if business.StripeSecretKey == "" {
		observability.CheckoutSessions.WithLabelValues("rejected").Inc()
		return nil, ErrPaymentsNotConfigured
	}

	// Re-read every line from the catalog; totals come from these rows, never
	// from client-supplied prices.
	var (
		total     float64
		snapshot  []models.SaleItem
		lineItems []SessionItem
	)
	for _, line := range cart {
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}

		product, err := database.GetCatalogItem(db, line.ProductId, business.Id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				observability.CheckoutSessions.WithLabelValues("rejected").Inc()
				return nil, &CartError{ProductId: line.ProductId, Reason: "not found or out of stock"}
			}
			return nil, err
		}
		if product.Stock < qty {
			observability.CheckoutSessions.WithLabelValues("rejected").Inc()
			return nil, &CartError{ProductId: line.ProductId, Reason: "insufficient stock"}
		}

		total += product.Price * float64(qty)
		snapshot = append(snapshot, models.SaleItem{
			ProductId: product.Id,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  qty,
		})
		lineItems = append(lineItems, SessionItem{
			Name:        product.Name,
			Description: product.Description,
			UnitAmount:  utils.Cents(product.Price),
			Quantity:    int64(qty),
		})
	}
	total = utils.Round2(total)

	if successURL == "" {
		successURL = s.DefaultSuccessURL
	}
	if cancelURL == "" {
		cancelURL = s.DefaultCancelURL
	}

	// The metadata payload is the only link between the external session and
	// internal state until the Sale row below is written.
	idsAndQuantities, _ := json.Marshal(cartQuantities(snapshot))
	session, err := s.Gateway.CreateCheckoutSession(business.StripeSecretKey, SessionRequest{
		Items: lineItems,
		Metadata: map[string]string{
			"business_id":     business.Id,
			"customer_phone":  customerPhone,
			"conversation_id": conversationId,
			"products":        string(idsAndQuantities),
		},
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		zap.L().Error("checkout session creation failed",
			zap.String("business_id", business.Id),
			zap.Error(err))
		observability.CheckoutSessions.WithLabelValues("provider_error").Inc()
		return nil, err
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	sale := models.Sale{
		BusinessId:      business.Id,
		ConversationId:  conversationId,
		CustomerPhone:   customerPhone,
		Amount:          total,
		Currency:        "usd",
		StripeSessionId: session.Id,
		Items:           datatypes.JSON(snapshotJSON),
		Status:          models.SalePending,
	}
	if err := db.Create(&sale).Error; err != nil {
		return nil, err
	}

	observability.CheckoutSessions.WithLabelValues("created").Inc()
	return &CheckoutResult{
		PaymentURL: session.URL,
		SessionId:  session.Id,
		Amount:     total,
		SaleId:     sale.Id,
	}, nil
}

func cartQuantities(items []models.SaleItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{"id": item.ProductId, "quantity": item.Quantity})
	}
	return out
}

// Reconcile applies one verified provider callback to the matching Sale,
// keyed by external session id. The status flip is guarded on the current
// status being pending, which makes the handler naturally idempotent under
// at-least-once delivery: a duplicate "completed" event can never
// double-decrement stock.
func (s *Checkout) Reconcile(db *gorm.DB, businessId string, event *WebhookEvent) error {
	switch event.Type {
	case "checkout.session.completed":
		return db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Sale{}).
				Where("stripe_session_id = ? AND business_id = ? AND status = ?",
					event.SessionId, businessId, models.SalePending).
				Update("status", models.SaleCompleted)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Already reconciled (or unknown session) — nothing to apply.
				observability.Reconciliations.WithLabelValues(event.Type, "noop").Inc()
				return nil
			}

			var sale models.Sale
			if err := tx.Where("stripe_session_id = ? AND business_id = ?", event.SessionId, businessId).
				First(&sale).Error; err != nil {
				return err
			}
			var items []models.SaleItem
			if err := json.Unmarshal(sale.Items, &items); err != nil {
				return fmt.Errorf("decode sale snapshot: %w", err)
			}

			// The snapshot, not the live catalog, decides what gets decremented.
			for _, item := range items {
				rows, err := database.DecrementStock(tx, item.ProductId, item.Quantity)
				if err != nil {
					return err
				}
				if rows == 0 {
					zap.L().Warn("stock decrement rejected by guard",
						zap.String("product_id", item.ProductId),
						zap.Int("quantity", item.Quantity))
				}
			}

			observability.Reconciliations.WithLabelValues(event.Type, "applied").Inc()
			return nil
		})

	case "checkout.session.expired":
		res := db.Model(&models.Sale{}).
			Where("stripe_session_id = ? AND business_id = ? AND status = ?",
				event.SessionId, businessId, models.SalePending).
			Update("status", models.SaleCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			observability.Reconciliations.WithLabelValues(event.Type, "noop").Inc()
		} else {
			observability.Reconciliations.WithLabelValues(event.Type, "applied").Inc()
		}
		return nil

	default:
		zap.L().Info("unhandled payment event", zap.String("type", event.Type))
		observability.Reconciliations.WithLabelValues(event.Type, "ignored").Inc()
		return nil
	}
}
