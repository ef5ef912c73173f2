package services

import (
	"errors"
	"testing"

	"salesassistant-backend/models"
)

type fakeGateway struct {
	lastSecret string
	lastReq    SessionRequest
	calls      int

	session Session
	err     error
}

func (g *fakeGateway) CreateCheckoutSession(secretKey string, req SessionRequest) (*Session, error) {
	g.calls++
	g.lastSecret = secretKey
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	s := g.session
	return &s, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signature, webhookSecret string) (*WebhookEvent, error) {
	return nil, errors.New("not used in these tests")
}

func newCheckout(gateway *fakeGateway) *Checkout {
	return &Checkout{
		Gateway:           gateway,
		DefaultSuccessURL: "https://app.example.com/payment/success",
		DefaultCancelURL:  "https://app.example.com/payment/cancel",
	}
}

func TestCreatePaymentLinkServerSideTotals(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)
	product := seedProduct(t, db, business.Id, "Burrito", 15.00, 10)

	gateway := &fakeGateway{session: Session{Id: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}}
	checkout := newCheckout(gateway)

	result, err := checkout.CreatePaymentLink(db, business,
		[]CartLine{{ProductId: product.Id, Quantity: 2}},
		"5215550001", "", "", "")
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}

	if result.Amount != 30.00 {
		t.Fatalf("amount = %v, want 30.00 (catalog price x qty)", result.Amount)
	}
	if result.PaymentURL != "https://pay.example.com/cs_test_1" || result.SessionId != "cs_test_1" {
		t.Fatalf("session handle wrong: %+v", result)
	}

	if gateway.lastSecret != business.StripeSecretKey {
		t.Fatalf("gateway called with wrong tenant key")
	}
	if len(gateway.lastReq.Items) != 1 {
		t.Fatalf("gateway got %d line items, want 1", len(gateway.lastReq.Items))
	}
	item := gateway.lastReq.Items[0]
	if item.UnitAmount != 1500 || item.Quantity != 2 {
		t.Fatalf("line item = %+v, want 1500 cents x2", item)
	}
	if gateway.lastReq.Metadata["business_id"] != business.Id ||
		gateway.lastReq.Metadata["customer_phone"] != "5215550001" {
		t.Fatalf("metadata wrong: %v", gateway.lastReq.Metadata)
	}
	if gateway.lastReq.SuccessURL != checkout.DefaultSuccessURL {
		t.Fatalf("default success URL not applied")
	}

	var sale models.Sale
	if err := db.First(&sale, "id = ?", result.SaleId).Error; err != nil {
		t.Fatalf("sale not recorded: %v", err)
	}
	if sale.Status != models.SalePending || sale.Amount != 30.00 || sale.StripeSessionId != "cs_test_1" {
		t.Fatalf("sale row wrong: %+v", sale)
	}

	// Session creation must not touch stock.
	var fresh models.Product
	db.First(&fresh, "id = ?", product.Id)
	if fresh.Stock != 10 {
		t.Fatalf("stock changed at session time: %d", fresh.Stock)
	}
}

func TestCreatePaymentLinkAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)
	good := seedProduct(t, db, business.Id, "Taco", 3.50, 10)
	low := seedProduct(t, db, business.Id, "Burrito", 15.00, 1)

	gateway := &fakeGateway{session: Session{Id: "cs_test_2"}}
	checkout := newCheckout(gateway)

	_, err := checkout.CreatePaymentLink(db, business,
		[]CartLine{
			{ProductId: good.Id, Quantity: 1},
			{ProductId: low.Id, Quantity: 3},
		},
		"5215550001", "", "", "")

	var cartErr *CartError
	if !errors.As(err, &cartErr) {
		t.Fatalf("got %v, want CartError", err)
	}
	if cartErr.ProductId != low.Id {
		t.Fatalf("wrong offending product: %s", cartErr.ProductId)
	}
	if gateway.calls != 0 {
		t.Fatalf("provider was called despite rejected cart")
	}

	var count int64
	db.Model(&models.Sale{}).Count(&count)
	if count != 0 {
		t.Fatalf("sale recorded for rejected cart")
	}
}

func TestCreatePaymentLinkRejectsUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)

	checkout := newCheckout(&fakeGateway{})
	_, err := checkout.CreatePaymentLink(db, business,
		[]CartLine{{ProductId: "no-such-id", Quantity: 1}},
		"5215550001", "", "", "")

	var cartErr *CartError
	if !errors.As(err, &cartErr) {
		t.Fatalf("got %v, want CartError", err)
	}
}

func TestCreatePaymentLinkGuards(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)
	checkout := newCheckout(&fakeGateway{})

	if _, err := checkout.CreatePaymentLink(db, business, nil, "521", "", "", ""); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("empty cart: got %v", err)
	}

	business.StripeSecretKey = ""
	product := seedProduct(t, db, business.Id, "Taco", 3.50, 5)
	_, err := checkout.CreatePaymentLink(db, business,
		[]CartLine{{ProductId: product.Id}}, "521", "", "", "")
	if !errors.Is(err, ErrPaymentsNotConfigured) {
		t.Fatalf("missing key: got %v", err)
	}
}

func TestReconcileCompletedDecrementsOnce(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)
	product := seedProduct(t, db, business.Id, "Burrito", 15.00, 3)

	gateway := &fakeGateway{session: Session{Id: "cs_test_3"}}
	checkout := newCheckout(gateway)

	result, err := checkout.CreatePaymentLink(db, business,
		[]CartLine{{ProductId: product.Id, Quantity: 2}},
		"5215550001", "", "", "")
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}

	event := &WebhookEvent{Type: "checkout.session.completed", SessionId: "cs_test_3"}
	if err := checkout.Reconcile(db, business.Id, event); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	var sale models.Sale
	db.First(&sale, "id = ?", result.SaleId)
	if sale.Status != models.SaleCompleted {
		t.Fatalf("sale status = %q, want completed", sale.Status)
	}
	var fresh models.Product
	db.First(&fresh, "id = ?", product.Id)
	if fresh.Stock != 1 {
		t.Fatalf("stock = %d, want 1 (3 - 2)", fresh.Stock)
	}

	// Duplicate delivery must be a no-op.
	if err := checkout.Reconcile(db, business.Id, event); err != nil {
		t.Fatalf("duplicate reconcile: %v", err)
	}
	db.First(&fresh, "id = ?", product.Id)
	if fresh.Stock != 1 {
		t.Fatalf("duplicate event double-decremented stock: %d", fresh.Stock)
	}
}

func TestReconcileExpiredCancelsWithoutTouchingStock(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)
	product := seedProduct(t, db, business.Id, "Burrito", 15.00, 3)

	gateway := &fakeGateway{session: Session{Id: "cs_test_4"}}
	checkout := newCheckout(gateway)

	result, err := checkout.CreatePaymentLink(db, business,
		[]CartLine{{ProductId: product.Id, Quantity: 2}},
		"5215550001", "", "", "")
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}

	event := &WebhookEvent{Type: "checkout.session.expired", SessionId: "cs_test_4"}
	if err := checkout.Reconcile(db, business.Id, event); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	var sale models.Sale
	db.First(&sale, "id = ?", result.SaleId)
	if sale.Status != models.SaleCancelled {
		t.Fatalf("sale status = %q, want cancelled", sale.Status)
	}
	var fresh models.Product
	db.First(&fresh, "id = ?", product.Id)
	if fresh.Stock != 3 {
		t.Fatalf("expired session changed stock: %d", fresh.Stock)
	}
}

func TestReconcileIgnoresUnknownEventTypes(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)

	checkout := newCheckout(&fakeGateway{})
	event := &WebhookEvent{Type: "payment_intent.created", SessionId: "cs_x"}
	if err := checkout.Reconcile(db, business.Id, event); err != nil {
		t.Fatalf("unknown event type must be ignored, got %v", err)
	}
}

func TestReconcileScopedToBusiness(t *testing.T) {
	db := newTestDB(t)
	business := seedBusiness(t, db)
	other := seedBusiness(t, db)
	product := seedProduct(t, db, business.Id, "Burrito", 15.00, 3)

	gateway := &fakeGateway{session: Session{Id: "cs_test_5"}}
	checkout := newCheckout(gateway)

	result, err := checkout.CreatePaymentLink(db, business,
		[]CartLine{{ProductId: product.Id, Quantity: 1}},
		"5215550001", "", "", "")
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}

	// A completed event routed to a different tenant must not touch the sale.
	event := &WebhookEvent{Type: "checkout.session.completed", SessionId: "cs_test_5"}
	if err := checkout.Reconcile(db, other.Id, event); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	var sale models.Sale
	db.First(&sale, "id = ?", result.SaleId)
	if sale.Status != models.SalePending {
		t.Fatalf("cross-tenant event changed sale status to %q", sale.Status)
	}
}
