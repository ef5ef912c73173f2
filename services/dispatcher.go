package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"salesassistant-backend/models"
	"salesassistant-backend/observability"
	"salesassistant-backend/providers/ultramsg"

	"go.uber.org/zap"
)

// ErrMessagingNotConfigured marks a tenant without UltraMsg credentials.
var ErrMessagingNotConfigured = errors.New("messaging provider not configured for this business")

// Dispatcher sends outbound WhatsApp messages with the tenant's own UltraMsg
// credentials. Every method returns a bare success bool: missing credentials
// and provider failures are logged and absorbed so the orchestrator can
// degrade instead of failing the whole pipeline.
type Dispatcher struct {
	BaseURL string
	HTTP    *http.Client
}

func (d *Dispatcher) client(business *models.Business) *ultramsg.Client {
	return &ultramsg.Client{
		InstanceId: business.UltramsgInstanceId,
		Token:      business.UltramsgToken,
		BaseURL:    d.BaseURL,
		HTTP:       d.HTTP,
	}
}

func (d *Dispatcher) SendText(ctx context.Context, business *models.Business, to, body string) bool {
	if !business.HasMessagingCredentials() {
		zap.L().Warn("messaging not configured", zap.String("business_id", business.Id))
		observability.OutboundDispatches.WithLabelValues("text", "not_configured").Inc()
		return false
	}

	status, err := d.client(business).SendChat(ctx, to, body)
	if err != nil {
		zap.L().Error("outbound text failed",
			zap.String("business_id", business.Id),
			zap.Int("status", status),
			zap.Error(err))
		observability.OutboundDispatches.WithLabelValues("text", "error").Inc()
		return false
	}

	observability.OutboundDispatches.WithLabelValues("text", "ok").Inc()
	return true
}

func (d *Dispatcher) SendImage(ctx context.Context, business *models.Business, to, imageURL, caption string) bool {
	if !business.HasMessagingCredentials() {
		zap.L().Warn("messaging not configured", zap.String("business_id", business.Id))
		observability.OutboundDispatches.WithLabelValues("image", "not_configured").Inc()
		return false
	}

	status, err := d.client(business).SendImage(ctx, to, imageURL, caption)
	if err != nil {
		zap.L().Error("outbound image failed",
			zap.String("business_id", business.Id),
			zap.Int("status", status),
			zap.Error(err))
		observability.OutboundDispatches.WithLabelValues("image", "error").Inc()
		return false
	}

	observability.OutboundDispatches.WithLabelValues("image", "ok").Inc()
	return true
}

// ConnectionState probes whether the tenant's WhatsApp session is up.
// "open" means connected; any other state means the instance needs to be
// re-linked from the provider dashboard.
func (d *Dispatcher) ConnectionState(ctx context.Context, business *models.Business) (string, error) {
	if !business.HasMessagingCredentials() {
		return "", ErrMessagingNotConfigured
	}
	return d.client(business).ConnectionState(ctx)
}

// SendPaymentLink formats amount, description and link into the WhatsApp
// message body and sends it as a regular text.
func (d *Dispatcher) SendPaymentLink(ctx context.Context, business *models.Business, to, paymentURL string, amount float64, description string) bool {
	body := fmt.Sprintf(
		"💳 *Payment Link*\n\n💰 Total: $%.2f\n📝 %s\n\n🔗 Pay now: %s\n\nThank you for your purchase! 🛒",
		amount, description, paymentURL)
	return d.SendText(ctx, business, to, body)
}
