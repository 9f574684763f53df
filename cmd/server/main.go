package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	inventoryapp "github.com/stocksync/backend/internal/application/inventory"
	syncapp "github.com/stocksync/backend/internal/application/sync"
	webhookapp "github.com/stocksync/backend/internal/application/webhook"
	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/inventory"
	"github.com/stocksync/backend/internal/infrastructure/cache"
	"github.com/stocksync/backend/internal/infrastructure/config"
	"github.com/stocksync/backend/internal/infrastructure/labeling"
	"github.com/stocksync/backend/internal/infrastructure/logger"
	"github.com/stocksync/backend/internal/infrastructure/persistence"
	"github.com/stocksync/backend/internal/infrastructure/platform"
	"github.com/stocksync/backend/internal/infrastructure/ratelimit"
	"github.com/stocksync/backend/internal/infrastructure/vault"
	"github.com/stocksync/backend/internal/interfaces/http/handler"
	"github.com/stocksync/backend/internal/interfaces/http/middleware"
	"github.com/stocksync/backend/internal/interfaces/http/router"
)

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
		_ = log.Sync()
	}()

	log.Info("Starting StockSync Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with a zap-backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
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

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	recordRepo := persistence.NewGormRecordRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)

	// Credential vault
	credentialVault := vault.New(cfg.Vault, log)

	// Platform adapters
	shopifyAdapter := platform.NewShopifyAdapter(cfg.Sync.ProviderTimeout)
	squareAdapter := platform.NewSquareAdapter(cfg.Sync.ProviderTimeout)
	adapterRegistry := platform.NewRegistry(shopifyAdapter, squareAdapter)

	// Labeling collaborator
	var labeler integration.Labeler
	if cfg.Labeling.Enabled {
		labeler = labeling.NewClient(cfg.Labeling, log)
		log.Info("Labeling client enabled", zap.String("base_url", cfg.Labeling.BaseURL))
	} else {
		labeler = labeling.NoopLabeler{}
	}

	// Reconciliation services. Webhook deliveries get their own instance so
	// history rows carry the webhook change type.
	reconcileService := syncapp.NewReconcileService(recordRepo, historyRepo, labeler, log,
		syncapp.WithWorkers(cfg.Sync.Workers),
		syncapp.WithDedupWindow(cfg.Sync.HistoryDedupWindow),
	)
	webhookReconcile := syncapp.NewReconcileService(recordRepo, historyRepo, labeler, log,
		syncapp.WithDedupWindow(cfg.Sync.HistoryDedupWindow),
		syncapp.WithChangeType(inventory.ChangeTypeWebhook),
	)

	platformSyncService := syncapp.NewPlatformSyncService(tenantRepo, credentialVault, adapterRegistry, reconcileService, log)
	importService := syncapp.NewImportService(reconcileService, cfg.Sync.ProviderTimeout, log)
	queryService := inventoryapp.NewQueryService(recordRepo, historyRepo, log)

	// Webhook delivery dedup store: redis when available, in-memory otherwise
	dedupStore := cache.NewIdempotencyStore(cfg.Redis, log)
	defer func() {
		_ = dedupStore.Close()
	}()

	shopifyProcessor := webhookapp.NewShopifyProcessor(cfg.Webhook, tenantRepo, recordRepo, webhookReconcile, shopifyAdapter, credentialVault, dedupStore, log)
	squareProcessor := webhookapp.NewSquareProcessor(cfg.Webhook, tenantRepo, recordRepo, webhookReconcile, squareAdapter, credentialVault, dedupStore, log)
	subscriptionService := webhookapp.NewSubscriptionService(tenantRepo, credentialVault, shopifyAdapter, log)

	// Rate limiter over redis (shared counters) or per-process memory
	var limiterStore ratelimit.Store
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = redisClient.Close()
		}()
		limiterStore = ratelimit.NewRedisStore(redisClient)
	} else {
		limiterStore = ratelimit.NewMemoryStore(cfg.RateLimit.SweepInterval)
	}
	defer func() {
		_ = limiterStore.Close()
	}()
	limiter := ratelimit.NewLimiter(limiterStore)

	// Initialize handlers
	syncHandler := handler.NewSyncHandler(reconcileService, platformSyncService, importService, log)
	inventoryHandler := handler.NewInventoryHandler(queryService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, log)
	webhookHandler := handler.NewWebhookHandler(shopifyProcessor, squareProcessor, cfg.HTTP.MaxBodySize, log)
	systemHandler := handler.NewSystemHandler(db)

	// Set gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	// Tenant-authenticated API routes share the standard preset; webhook
	// receivers authenticate per-delivery via HMAC and rate-limit per source IP
	tenantAuth := middleware.TenantAuth(cfg.JWT, log)
	apiMiddleware := []gin.HandlerFunc{tenantAuth}
	webhookMiddleware := []gin.HandlerFunc{}
	if cfg.RateLimit.Enabled {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter, cfg.RateLimit.Standard, "standard", log))
		webhookMiddleware = append(webhookMiddleware, middleware.RateLimit(limiter, cfg.RateLimit.Webhook, "webhook", log))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterAPI(syncHandler, apiMiddleware...).
		RegisterAPI(inventoryHandler, apiMiddleware...).
		RegisterAPI(subscriptionHandler, apiMiddleware...).
		RegisterRoot("/webhooks", webhookHandler, webhookMiddleware...).
		RegisterRoot("", systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
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
