package services

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// SessionItem is one verified line handed to the payment provider.
type SessionItem struct {
	Name        string
	Description string
	UnitAmount  int64 // minor units (cents)
	Quantity    int64
}

// SessionRequest describes one checkout session to open.
type SessionRequest struct {
	Items      []SessionItem
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}

// Session is the provider-side handle we keep.
type Session struct {
	Id  string
	URL string
}

// WebhookEvent is a verified, decoded reconciliation callback.
type WebhookEvent struct {
	Type      string
	SessionId string
	Metadata  map[string]string
}

// PaymentGateway abstracts the payment provider so the checkout pipeline can
// be exercised against a fake in tests. The real implementation is Stripe,
// credentialed per tenant on every call.
type PaymentGateway interface {
	CreateCheckoutSession(secretKey string, req SessionRequest) (*Session, error)
	VerifyWebhook(payload []byte, signature, webhookSecret string) (*WebhookEvent, error)
}

// StripeGateway implements PaymentGateway against the live Stripe API.
type StripeGateway struct{}

func (StripeGateway) CreateCheckoutSession(secretKey string, req SessionRequest) (*Session, error) {
	api := &client.API{}
	api.Init(secretKey, nil)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount:  stripe.Int64(item.UnitAmount),
				ProductData: productData,
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Session{Id: sess.ID, URL: sess.URL}, nil
}

func (StripeGateway) VerifyWebhook(payload []byte, signature, webhookSecret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode webhook object: %w", err)
	}

	return &WebhookEvent{
		Type:      string(event.Type),
		SessionId: sess.ID,
		Metadata:  sess.Metadata,
	}, nil
}
