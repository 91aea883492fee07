package main

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"teamhub/chat"
	"teamhub/config"
	"teamhub/middleware"
	"teamhub/realtime"
	"teamhub/routes"
)

func main() {
	appLog := logrus.New()
	appLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		appLog.Fatalf("Failed to load configuration: %v", err)
	}

	if config.AppConfig.Environment == "production" {
		appLog.SetFormatter(&logrus.JSONFormatter{})
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			appLog.Warnf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		appLog.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Realtime gateway; with redis enabled, broadcasts go through the
	// pub/sub bridge so every instance fans out the same events.
	hub := realtime.NewHub(appLog)
	var pub chat.Publisher = hub

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.AppConfig.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Address,
			Password: config.AppConfig.Redis.Password,
			DB:       config.AppConfig.Redis.DB,
		})
		bridge := realtime.NewRedisBridge(hub, rdb, realtime.DefaultBridgeChannel, appLog)
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("realtime bridge stopped")
			}
		}()
		pub = bridge
	}

	// Setup routes
	routes.SetupRoutes(app, config.DB, hub, pub, appLog)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	appLog.Infof("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		appLog.Fatalf("Failed to start server: %v", err)
	}
}
