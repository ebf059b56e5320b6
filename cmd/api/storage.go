package main

import (
	"context"
	"fmt"

	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/kvstore"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// storage bundles the repositories of the selected backend
type storage struct {
	store     persistence.KeyValueStore
	inventory persistence.InventoryRepository
	locks     persistence.PurchaseLockRepository
	orders    persistence.OrderRepository
	dedup     persistence.DeduplicationStore
	limiter   persistence.RateLimiter
	checks    map[string]handler.HealthCheck
	closers   []func() error
}

// Close releases every connection the backend opened
func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// newStorage connects the backend named by storage.backend.
// Memory keeps everything in this process; redis and postgres share state across instances.
func newStorage(ctx context.Context, cfg *config.Config, tp coreport.TimeProvider, logger coreport.Logger) (*storage, error) {
	s := &storage{checks: map[string]handler.HealthCheck{}}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		s.store = kvstore.NewMemoryStore()
		s.inventory = repository.NewKVInventoryRepository(s.store, tp)
		s.locks = repository.NewKVPurchaseLockRepository(s.store)
		s.dedup = cache.NewMemoryDeduplicationStore(tp)
		s.limiter = cache.NewMemoryRateLimiter(tp, cfg.Notification.RateLimit, cfg.Notification.RateWindow)

	case config.BackendRedis:
		client, err := connectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		s.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		s.store = kvstore.NewRedisStore(client)
		s.inventory = repository.NewKVInventoryRepository(s.store, tp)
		s.locks = repository.NewRedisPurchaseLockRepository(client)
		s.useRedisGuards(client, cfg, tp)
		logger.Warn("Redis backend keeps stock as one document; run a single instance or use postgres", nil)

	case config.BackendPostgres:
		dbManager, err := connectDatabase(ctx, cfg, tp, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, dbManager.Close)
		s.checks["postgres"] = dbManager.HealthCheck

		db := dbManager.DB()
		s.store = kvstore.NewGormStore(db, tp)
		s.inventory = repository.NewInventoryRepository(db, tp, logger)
		s.locks = repository.NewPurchaseLockRepository(db, tp, logger)

		// Notification guards need TTL keys; Redis provides them when configured
		if cfg.Redis.Addr != "" {
			client, err := connectRedis(ctx, cfg)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.closers = append(s.closers, client.Close)
			s.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			s.useRedisGuards(client, cfg, tp)
		} else {
			s.dedup = cache.NewMemoryDeduplicationStore(tp)
			s.limiter = cache.NewMemoryRateLimiter(tp, cfg.Notification.RateLimit, cfg.Notification.RateWindow)
		}

	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Storage.Backend)
	}

	s.orders = repository.NewKVOrderRepository(s.store)
	return s, nil
}

func (s *storage) useRedisGuards(client *redis.Client, cfg *config.Config, tp coreport.TimeProvider) {
	s.dedup = cache.NewRedisDeduplicationStore(client)
	s.limiter = cache.NewRedisRateLimiter(client, tp, cfg.Notification.RateLimit, cfg.Notification.RateWindow)
}

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("redis backend: %w", err)
	}
	return client, nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, tp coreport.TimeProvider, logger coreport.Logger) (*database.Manager, error) {
	dbConfig := &database.Config{
		Driver:          "postgres",
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}
	if err := dbConfig.Validate(); err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	dbManager := database.NewManager(dbConfig, logger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbManager.Migrate(ctx); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return dbManager, nil
}
