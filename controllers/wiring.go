package controllers

import (
	"net/http"
	"time"

	"salesassistant-backend/config"
	"salesassistant-backend/services"
)

// Shared service singletons. Per-tenant credentials are threaded in from the
// business row on every call; nothing tenant-specific lives here.
var (
	replyGenerator = &services.ReplyGenerator{}
	dispatcher     = &services.Dispatcher{}
	checkout       = &services.Checkout{Gateway: services.StripeGateway{}}
)

// Setup wires provider call budgets and redirect defaults from config.
func Setup(cfg *config.Config) {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.ProviderTimeoutSeconds) * time.Second,
	}
	replyGenerator.HTTP = httpClient
	dispatcher.HTTP = httpClient

	checkout.DefaultSuccessURL = cfg.FrontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	checkout.DefaultCancelURL = cfg.FrontendURL + "/payment/cancel"
}
