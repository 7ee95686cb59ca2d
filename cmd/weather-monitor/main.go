package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/urbanpulse/weather-monitor/internal/api/http"
	"github.com/urbanpulse/weather-monitor/internal/cache"
	"github.com/urbanpulse/weather-monitor/internal/config"
	"github.com/urbanpulse/weather-monitor/internal/insights"
	"github.com/urbanpulse/weather-monitor/internal/narration"
	"github.com/urbanpulse/weather-monitor/internal/processors"
	"github.com/urbanpulse/weather-monitor/internal/scheduler"
	"github.com/urbanpulse/weather-monitor/internal/store"
	"github.com/urbanpulse/weather-monitor/internal/weather"
	"github.com/urbanpulse/weather-monitor/internal/weather/providers"
)

func main() {
	// Load configuration (godotenv is applied inside Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable row store: Postgres when configured, in-memory otherwise.
	var rows store.RowStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer pool.Close()
		rows = store.NewPostgresStore(pool)
	} else {
		log.Println("INFO: DATABASE_URL not set, using in-memory row store")
		rows = store.NewMemoryStore(0)
	}

	// Sources with resilience (backoff + circuit breaker), primary first.
	sources := []weather.Source{
		providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey),
		providers.NewAQICNProvider(httpClient, cfg.AQICNToken),
	}

	// Core fetch pipeline and read-through cache.
	service := weather.NewService(weather.NewConnector(sources), weather.NewNormalizer(nil))
	readThrough := cache.New(rows, service, cfg.CacheTTL)

	// Narration is optional; without a key the dashboard runs on
	// statistical anomalies alone.
	var narrator insights.Narrator
	if cfg.DeepSeekAPIKey != "" {
		narrator = narration.NewClient(httpClient, cfg.DeepSeekAPIKey)
	} else {
		log.Println("INFO: DEEPSEEK_API_KEY not set, model narration disabled")
	}

	engine := insights.NewEngine(service, readThrough, rows, processors.NewPipeline(), narrator, cfg.CityLimit)

	// Scheduler drives the monitoring and narration cycles.
	sched := scheduler.New(engine, cfg.RefreshInterval, cfg.NarrationInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-monitor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-monitor",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, readThrough, engine)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
