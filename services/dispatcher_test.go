package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salesassistant-backend/models"
)

func TestConnectionStateRequiresCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected provider call for unconfigured business")
	}))
	defer server.Close()

	d := &Dispatcher{BaseURL: server.URL}
	business := &models.Business{Id: "b1"} // no UltraMsg credentials

	_, err := d.ConnectionState(context.Background(), business)
	if !errors.Is(err, ErrMessagingNotConfigured) {
		t.Fatalf("got %v, want ErrMessagingNotConfigured", err)
	}
}

func TestConnectionStateReportsInstanceState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inst42/instance/connectionState" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"state":"open"}`))
	}))
	defer server.Close()

	d := &Dispatcher{BaseURL: server.URL}
	business := &models.Business{
		Id:                 "b1",
		UltramsgInstanceId: "inst42",
		UltramsgToken:      "tok-42",
	}

	state, err := d.ConnectionState(context.Background(), business)
	if err != nil {
		t.Fatalf("ConnectionState: %v", err)
	}
	if state != "open" {
		t.Fatalf("state = %q", state)
	}
}

func TestSendPaymentLinkBody(t *testing.T) {
	var sent struct {
		Body string `json:"body"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"sent":"true"}`))
	}))
	defer server.Close()

	d := &Dispatcher{BaseURL: server.URL}
	business := &models.Business{
		Id:                 "b1",
		UltramsgInstanceId: "inst42",
		UltramsgToken:      "tok-42",
	}

	if ok := d.SendPaymentLink(context.Background(), business, "521", "https://pay.example.com/cs_1", 30, "2x Burrito"); !ok {
		t.Fatalf("SendPaymentLink failed")
	}
	for _, want := range []string{"Total: $30.00", "2x Burrito", "https://pay.example.com/cs_1"} {
		if !strings.Contains(sent.Body, want) {
			t.Fatalf("payment link body missing %q:\n%s", want, sent.Body)
		}
	}
}
