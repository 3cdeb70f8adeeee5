package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fulfillmentapp "github.com/fulfillment/backend/internal/application/fulfillment"
	"github.com/fulfillment/backend/internal/domain/shared"
	"github.com/fulfillment/backend/internal/infrastructure/cache"
	"github.com/fulfillment/backend/internal/infrastructure/config"
	"github.com/fulfillment/backend/internal/infrastructure/event"
	"github.com/fulfillment/backend/internal/infrastructure/logger"
	"github.com/fulfillment/backend/internal/infrastructure/persistence"
	"github.com/fulfillment/backend/internal/interfaces/http/handler"
	"github.com/fulfillment/backend/internal/interfaces/http/middleware"
	"github.com/fulfillment/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/fulfillment/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Fulfillment Backend API
//	@version		1.0
//	@description	Order fulfillment and discrepancy resolution API

//	@contact.name	API Support
//	@contact.url	https://github.com/fulfillment/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Fulfillment Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Initialize idempotency store (Redis with in-memory fallback)
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	var idempotencyStore shared.IdempotencyStore
	if cfg.Cache.Backend == "memory" {
		idempotencyStore = storeFactory.CreateInMemoryStore()
		log.Info("Using in-memory idempotency store")
	} else {
		idempotencyStore, err = storeFactory.CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
	}
	defer func() {
		if closer, ok := idempotencyStore.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}
	}()

	idempotencyConfig := shared.IdempotencyConfig{
		TTL:     cfg.Cache.IdempotencyTTL,
		Enabled: true,
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Issue opened -> operator alerting. Wrapped with the idempotency store
	// so redelivered events do not produce duplicate alerts.
	issueAlertHandler := fulfillmentapp.NewIssueAlertHandler(log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		issueAlertHandler,
		idempotencyStore,
		log,
		event.WithIdempotencyConfig(idempotencyConfig),
	))
	log.Info("Event handlers registered",
		zap.Strings("issue_alert_events", issueAlertHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Repository publishes persisted domain events after commit
	orderRepo.SetEventPublisher(eventBus)

	// Initialize application services
	orderService := fulfillmentapp.NewOrderService(orderRepo)
	orderService.SetEventPublisher(eventBus)
	orderService.SetIdempotencyStore(idempotencyStore, idempotencyConfig)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Fulfillment domain (orders, deliveries, issues)
	fulfillmentRoutes := router.NewDomainGroup("fulfillment", "/fulfillment")
	fulfillmentRoutes.POST("/orders", orderHandler.Create)
	fulfillmentRoutes.GET("/orders", orderHandler.List)
	fulfillmentRoutes.GET("/orders/stats/summary", orderHandler.GetStatusSummary)
	fulfillmentRoutes.GET("/orders/number/:order_number", orderHandler.GetByOrderNumber)
	fulfillmentRoutes.GET("/orders/:id", orderHandler.GetByID)
	fulfillmentRoutes.POST("/orders/:id/confirm", orderHandler.Confirm)
	fulfillmentRoutes.POST("/orders/:id/deliveries", orderHandler.RecordDelivery)
	fulfillmentRoutes.POST("/orders/:id/issues", orderHandler.OpenIssue)
	fulfillmentRoutes.POST("/orders/:id/issues/:issue_id/resolve", orderHandler.ResolveIssue)
	fulfillmentRoutes.DELETE("/orders/:id", orderHandler.Delete)
	r.Register(fulfillmentRoutes)

	// System routes (info, ping)
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
