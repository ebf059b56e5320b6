package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/checkout"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/events"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/inventory"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/lock"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/notification"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/order"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/purchase"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/catalog"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/mailer"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/messaging"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/payment"
	timeProvider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production || cfg.Logger.Format == "json", cfg.Logger.Level)
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	products, err := cfg.Catalog.ProductList()
	if err != nil {
		fatal(appLogger, "Invalid catalog configuration", err)
	}
	productCatalog, err := catalog.NewStaticCatalog(products)
	if err != nil {
		fatal(appLogger, "Invalid catalog configuration", err)
	}
	shippingPolicy, err := cfg.Shipping.Policy()
	if err != nil {
		fatal(appLogger, "Invalid shipping configuration", err)
	}

	// Storage backend
	backend, err := newStorage(ctx, cfg, tp, appLogger)
	if err != nil {
		fatal(appLogger, "Failed to initialize storage", err)
	}
	defer backend.Close()

	if _, err := migration.SeedInventory(ctx, backend.inventory, cfg.InitialStock(), appLogger); err != nil {
		fatal(appLogger, "Failed to seed inventory", err)
	}

	// Messaging
	publisher, sender, closeMessaging := newMessaging(cfg, tp, appLogger)
	defer closeMessaging()

	emitter := events.NewEmitter(publisher, tp, appLogger)
	notifier := notification.NewNotifier(sender, backend.dedup, backend.limiter, notification.Config{
		From:       cfg.Notification.From,
		FromName:   cfg.Notification.FromName,
		AdminEmail: cfg.Notification.AdminEmail,
		ShopName:   cfg.Notification.ShopName,
		BaseURL:    cfg.Notification.BaseURL,
		DedupTTL:   cfg.Notification.DedupTTL,
	}, tp, appLogger)

	// Use cases
	ledger := inventory.NewLedger(backend.inventory, productCatalog, emitter, tp, appLogger, cfg.Inventory.LowStockThreshold)
	locks := lock.NewManager(backend.locks, tp, appLogger, cfg.Purchase.LockTTL)
	sessions := checkout.NewSessionManager(backend.store, productCatalog, shippingPolicy, tp, appLogger, cfg.Purchase.SessionTTL)
	coordinator := order.NewCoordinator(
		ledger,
		payment.NewSandboxRegistry(tp, appLogger),
		backend.orders,
		notifier,
		emitter,
		order.Config{Currency: cfg.Payment.Currency, RetryURLBase: cfg.Payment.RetryURLBase},
		tp,
		appLogger,
	)
	purchaseService := purchase.NewService(locks, ledger, sessions, coordinator, tp, appLogger)

	// Expiry is checked lazily on every acquire; the sweeper only trims stale keys
	var sweeper *lock.Sweeper
	if cfg.Purchase.SweepInterval > 0 {
		sweeper = lock.NewSweeper(locks, appLogger, cfg.Purchase.SweepInterval)
		sweeper.Start(ctx)
	}

	// HTTP
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, cfg.Server.AllowedOrigins)
	routes.SetupRoutes(router, routes.Handlers{
		Cart:      handler.NewCartHandler(purchaseService, appLogger),
		Lock:      handler.NewLockHandler(locks, appLogger),
		Inventory: handler.NewInventoryHandler(ledger, appLogger),
		Checkout:  handler.NewCheckoutHandler(purchaseService, sessions, appLogger),
		Order:     handler.NewOrderHandler(purchaseService, coordinator, appLogger),
		Health:    handler.NewHealthHandler(backend.checks, appLogger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":    server.Addr,
			"env":     cfg.Environment,
			"backend": cfg.Storage.Backend,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		appLogger.Error("Failed to start server", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	// Orders already queued finish before the stores close
	purchaseService.Shutdown()
	if sweeper != nil {
		sweeper.Stop()
	}

	appLogger.Info("Server exited gracefully", nil)
}

// newMessaging picks Kafka or log-only publishing for domain events and e-mail
func newMessaging(cfg *config.Config, tp coreport.TimeProvider, appLogger coreport.Logger) (gateway.EventPublisher, gateway.EmailSender, func()) {
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	var publisher gateway.EventPublisher = messaging.NewLogEventPublisher(appLogger)
	if cfg.Kafka.Enabled {
		kafkaPublisher := messaging.NewKafkaEventPublisher(messaging.NewWriter(messaging.WriterConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.EventsTopic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}), appLogger)
		closers = append(closers, kafkaPublisher.Close)
		publisher = kafkaPublisher
	}

	var sender gateway.EmailSender = mailer.NewLogSender(tp, appLogger)
	if cfg.Notification.Sender == "kafka" {
		kafkaSender := mailer.NewKafkaSender(messaging.NewWriter(messaging.WriterConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.EmailTopic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}), tp, appLogger)
		closers = append(closers, kafkaSender.Close)
		sender = kafkaSender
	}

	return publisher, sender, closeAll
}

func fatal(appLogger coreport.Logger, msg string, err error) {
	appLogger.Error(msg, map[string]any{
		"error": err.Error(),
	})
	_ = appLogger.Flush()
	os.Exit(1)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
	case config.BackendRedis:
		if cfg.Redis.Addr == "" {
			missingConfigs = append(missingConfigs, "redis.addr (or FS_REDIS_ADDR environment variable)")
		}
	case config.BackendPostgres:
		for key, value := range map[string]string{
			"database.host (or FS_DB_HOST)":         cfg.Database.Host,
			"database.port (or FS_DB_PORT)":         cfg.Database.Port,
			"database.username (or FS_DB_USERNAME)": cfg.Database.Username,
			"database.password (or FS_DB_PASSWORD)": cfg.Database.Password,
			"database.database (or FS_DB_NAME)":     cfg.Database.Database,
		} {
			if value == "" {
				missingConfigs = append(missingConfigs, key)
			}
		}
	default:
		return fmt.Errorf("invalid storage.backend value: %s, must be one of: %s, %s, or %s",
			cfg.Storage.Backend, config.BackendMemory, config.BackendRedis, config.BackendPostgres)
	}

	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		missingConfigs = append(missingConfigs, "kafka.brokers (or FS_KAFKA_BROKERS)")
	}
	if cfg.Notification.Sender == "kafka" && !cfg.Kafka.Enabled {
		return errors.New("notification.sender kafka requires kafka.enabled")
	}
	if cfg.Notification.Sender != "log" && cfg.Notification.Sender != "kafka" {
		return fmt.Errorf("invalid notification.sender value: %s, must be log or kafka", cfg.Notification.Sender)
	}

	if len(cfg.Catalog.Products) == 0 {
		missingConfigs = append(missingConfigs, "catalog.products")
	}
	if cfg.Purchase.LockTTL <= 0 {
		missingConfigs = append(missingConfigs, "purchase.lockTtl")
	}
	if cfg.Purchase.SessionTTL <= 0 {
		missingConfigs = append(missingConfigs, "purchase.sessionTtl")
	}

	if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.Environment == config.Production {
		var warnings []string

		if cfg.Storage.Backend == config.BackendMemory {
			warnings = append(warnings, "storage.backend memory loses stock, locks and orders on restart")
		}
		sslMode := strings.ToLower(cfg.Database.SSLMode)
		if cfg.Storage.Backend == config.BackendPostgres && sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if cfg.Notification.AdminEmail == "" {
			warnings = append(warnings, "notification.adminEmail is empty; rollback failures will only be logged")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
