package middlewares

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"salesassistant-backend/database"
	"salesassistant-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var idemDBSeq atomic.Int64

func setupIdempotencyDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:idem_test_%d?mode=memory&cache=shared", idemDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.IdempotencyKey{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func newIdempotencyApp(businessID string, calls *atomic.Int64) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("businessID", businessID)
		return c.Next()
	})
	app.Use(Idempotency())
	app.Post("/orders", func(c *fiber.Ctx) error {
		n := calls.Add(1)
		return c.JSON(fiber.Map{"order": n})
	})
	return app
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	setupIdempotencyDB(t)

	var calls atomic.Int64
	app := newIdempotencyApp("biz-1", &calls)

	do := func() (int, string) {
		req := httptest.NewRequest(fiber.MethodPost, "/orders", strings.NewReader(`{"item":"taco"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "key-abc")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	status1, body1 := do()
	status2, body2 := do()

	if status1 != fiber.StatusOK || status2 != fiber.StatusOK {
		t.Fatalf("statuses: %d / %d", status1, status2)
	}
	if calls.Load() != 1 {
		t.Fatalf("handler ran %d times, want 1", calls.Load())
	}
	if body1 != body2 {
		t.Fatalf("replay body differs: %q vs %q", body1, body2)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	setupIdempotencyDB(t)

	var calls atomic.Int64
	app := newIdempotencyApp("biz-1", &calls)

	first := httptest.NewRequest(fiber.MethodPost, "/orders", strings.NewReader(`{"item":"taco"}`))
	first.Header.Set("Idempotency-Key", "key-abc")
	if _, err := app.Test(first); err != nil {
		t.Fatalf("first request: %v", err)
	}

	second := httptest.NewRequest(fiber.MethodPost, "/orders", strings.NewReader(`{"item":"burrito"}`))
	second.Header.Set("Idempotency-Key", "key-abc")
	resp, err := app.Test(second)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if calls.Load() != 1 {
		t.Fatalf("handler ran %d times, want 1", calls.Load())
	}
}

func TestIdempotencyScopedPerTenant(t *testing.T) {
	setupIdempotencyDB(t)

	var callsA, callsB atomic.Int64
	appA := newIdempotencyApp("biz-a", &callsA)
	appB := newIdempotencyApp("biz-b", &callsB)

	reqA := httptest.NewRequest(fiber.MethodPost, "/orders", strings.NewReader(`{"item":"taco"}`))
	reqA.Header.Set("Idempotency-Key", "shared-key")
	if _, err := appA.Test(reqA); err != nil {
		t.Fatalf("tenant A request: %v", err)
	}

	// Same key and body under another tenant must look like plain reuse.
	reqB := httptest.NewRequest(fiber.MethodPost, "/orders", strings.NewReader(`{"item":"taco"}`))
	reqB.Header.Set("Idempotency-Key", "shared-key")
	resp, err := appB.Test(reqB)
	if err != nil {
		t.Fatalf("tenant B request: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if callsB.Load() != 0 {
		t.Fatalf("tenant B handler ran despite foreign key")
	}
}

func TestIdempotencySkipsReadsAndMissingKey(t *testing.T) {
	setupIdempotencyDB(t)

	var calls atomic.Int64
	app := newIdempotencyApp("biz-1", &calls)

	// No key header: every request runs.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/orders", strings.NewReader(`{}`))
		if _, err := app.Test(req); err != nil {
			t.Fatalf("request: %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("handler ran %d times, want 2", calls.Load())
	}
}
