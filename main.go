package main

import (
	"time"

	"salesassistant-backend/config"
	"salesassistant-backend/controllers"
	"salesassistant-backend/database"
	"salesassistant-backend/logging"
	"salesassistant-backend/middlewares"
	"salesassistant-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if _, err := logging.Init(cfg.LogLevel, cfg.Environment); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	// ---- Database
	if err := database.Connect(cfg); err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}
	if err := database.AutoMigrate(); err != nil {
		zap.L().Fatal("auto-migration failed", zap.Error(err))
	}
	if err := database.Harden(); err != nil {
		zap.L().Fatal("hardening migration failed", zap.Error(err))
	}

	// ---- Service singletons (provider timeouts, redirect defaults)
	controllers.Setup(cfg)

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Global rate limiter
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Duration(cfg.RateLimitWindowSecond) * time.Second,
		// Default KeyGenerator = client IP; default 429 handler is fine.
	}))

	// ---- Request metrics
	app.Use(middlewares.Metrics())

	// ---- Routes
	routes.Register(app)

	// ---- Start
	zap.L().Info("starting API server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}
