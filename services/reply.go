package services

import (
	"context"
	"net/http"

	"salesassistant-backend/models"
	"salesassistant-backend/observability"
	"salesassistant-backend/providers/anthropic"

	"go.uber.org/zap"
)

// Fixed degraded-service texts. A broken model integration must never block
// message persistence or leave the customer without any reply.
const (
	ReplyNotConfigured = "Sorry, the assistant is not set up correctly yet. Please contact the business directly."
	ReplyFallback      = "Sorry, I'm having technical trouble right now. Could you try again in a moment?"
)

// ReplyGenerator produces the assistant reply for one tenant-credentialed
// model call. BaseURL/HTTP exist so tests can point it at a fake server.
type ReplyGenerator struct {
	BaseURL string
	HTTP    *http.Client
}

// GenerateReply never returns an error: missing credentials fail fast with a
// fixed message (no network round trip), and any call failure degrades to a
// fixed apology. Credentials arrive on the already-loaded business row; no
// re-fetching per call.
func (g *ReplyGenerator) GenerateReply(ctx context.Context, business *models.Business, prompt string) string {
	if business.AnthropicApiKey == "" {
		observability.RepliesGenerated.WithLabelValues("not_configured").Inc()
		return ReplyNotConfigured
	}

	client := &anthropic.Client{
		APIKey:  business.AnthropicApiKey,
		BaseURL: g.BaseURL,
		HTTP:    g.HTTP,
	}

	text, err := client.Complete(ctx, prompt)
	if err != nil {
		zap.L().Error("model completion failed",
			zap.String("business_id", business.Id),
			zap.Error(err))
		observability.RepliesGenerated.WithLabelValues("fallback").Inc()
		return ReplyFallback
	}

	observability.RepliesGenerated.WithLabelValues("ok").Inc()
	return text
}
