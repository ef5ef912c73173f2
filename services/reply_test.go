package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"salesassistant-backend/models"
)

func TestGenerateReplyNotConfiguredSkipsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected provider call for unconfigured business")
	}))
	defer server.Close()

	g := &ReplyGenerator{BaseURL: server.URL}
	business := &models.Business{Id: "b1"} // no AnthropicApiKey

	got := g.GenerateReply(context.Background(), business, "prompt")
	if got != ReplyNotConfigured {
		t.Fatalf("expected not-configured reply, got %q", got)
	}
}

func TestGenerateReplyOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"We have two tacos left!"}]}`))
	}))
	defer server.Close()

	g := &ReplyGenerator{BaseURL: server.URL}
	business := &models.Business{Id: "b1", AnthropicApiKey: "sk-ant-test"}

	got := g.GenerateReply(context.Background(), business, "prompt")
	if got != "We have two tacos left!" {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestGenerateReplyFallsBackOnProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"type":"api_error","message":"overloaded"}}`))
	}))
	defer server.Close()

	g := &ReplyGenerator{BaseURL: server.URL}
	business := &models.Business{Id: "b1", AnthropicApiKey: "sk-ant-test"}

	got := g.GenerateReply(context.Background(), business, "prompt")
	if got != ReplyFallback {
		t.Fatalf("expected fallback reply, got %q", got)
	}
}
