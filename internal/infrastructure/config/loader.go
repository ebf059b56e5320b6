package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "FS"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration from file based on the FS_ENV environment
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}
	return load(getEnvironment(), ConfigPaths)
}

func load(env string, paths []string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	config.Storage.Backend = strings.ToLower(config.Storage.Backend)

	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile loads the first .env file found. Variables already set win.
func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}
	if lastError != nil {
		return fmt.Errorf("could not load .env file: %w", lastError)
	}
	return nil
}

// setDefaults sets default values for the configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 10)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.idleTimeout", 60)
	v.SetDefault("server.readHeaderTimeout", 5)
	v.SetDefault("server.shutdownTimeout", 15)

	v.SetDefault("storage.backend", BackendMemory)

	// Database defaults
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 5) // minutes
	v.SetDefault("database.connMaxIdleTime", 5) // minutes
	v.SetDefault("database.queryTimeout", 10)   // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.dialTimeout", 5)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.eventsTopic", "storefront.events")
	v.SetDefault("kafka.emailTopic", "storefront.emails")
	v.SetDefault("kafka.batchTimeout", 10) // milliseconds

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("purchase.lockTtl", 600)     // 10 minutes
	v.SetDefault("purchase.sessionTtl", 1800) // 30 minutes
	v.SetDefault("purchase.sweepInterval", 60)

	v.SetDefault("inventory.defaultStock", 10)
	v.SetDefault("inventory.lowStockThreshold", 3)

	v.SetDefault("shipping.carrier", "yamato")
	v.SetDefault("shipping.fee", 500)
	v.SetDefault("shipping.taxRate", "0.10")
	v.SetDefault("shipping.minimumOrder", 4500)

	v.SetDefault("notification.sender", "log")
	v.SetDefault("notification.shopName", "Farm Storefront")
	v.SetDefault("notification.dedupTtl", 24) // hours
	v.SetDefault("notification.rateLimit", 10)
	v.SetDefault("notification.rateWindow", 60)

	v.SetDefault("payment.currency", "jpy")
}

// getEnvironment determines the environment to use based on the FS_ENV environment variable
func getEnvironment() string {
	env := os.Getenv("FS_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides makes explicitly named environment variables win over file values
func processEnvOverrides(v *viper.Viper) {
	overrides := map[string]string{
		"FS_DB_HOST":                  "database.host",
		"FS_DB_PORT":                  "database.port",
		"FS_DB_USERNAME":              "database.username",
		"FS_DB_PASSWORD":              "database.password",
		"FS_DB_NAME":                  "database.database",
		"FS_DB_SSL_MODE":              "database.sslMode",
		"FS_REDIS_ADDR":               "redis.addr",
		"FS_REDIS_PASSWORD":           "redis.password",
		"FS_STORAGE_BACKEND":          "storage.backend",
		"FS_SERVER_HOST":              "server.host",
		"FS_SERVER_PORT":              "server.port",
		"FS_LOGGER_LEVEL":             "logger.level",
		"FS_NOTIFICATION_SENDER":      "notification.sender",
		"FS_NOTIFICATION_ADMIN_EMAIL": "notification.adminEmail",
		"FS_PAYMENT_RETRY_URL_BASE":   "payment.retryUrlBase",
	}
	for env, key := range overrides {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	if brokers := os.Getenv("FS_KAFKA_BROKERS"); brokers != "" {
		v.Set("kafka.brokers", strings.Split(brokers, ","))
		v.Set("kafka.enabled", true)
	}
	if origins := os.Getenv("FS_SERVER_ALLOWED_ORIGINS"); origins != "" {
		v.Set("server.allowedOrigins", strings.Split(origins, ","))
	}

	if maxOpenConns := getEnvInt("FS_DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		v.Set("database.maxOpenConns", maxOpenConns)
	}
	if lockTTL := getEnvInt("FS_PURCHASE_LOCK_TTL_SECONDS", 0); lockTTL > 0 {
		v.Set("purchase.lockTtl", lockTTL)
	}
	if sessionTTL := getEnvInt("FS_PURCHASE_SESSION_TTL_SECONDS", 0); sessionTTL > 0 {
		v.Set("purchase.sessionTtl", sessionTTL)
	}
}

// getEnvInt reads an integer environment variable
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw unit counts
func processDurations(config *Config) {
	config.Server.ReadTimeout = config.Server.ReadTimeout * time.Second
	config.Server.WriteTimeout = config.Server.WriteTimeout * time.Second
	config.Server.IdleTimeout = config.Server.IdleTimeout * time.Second
	config.Server.ReadHeaderTimeout = config.Server.ReadHeaderTimeout * time.Second
	config.Server.ShutdownTimeout = config.Server.ShutdownTimeout * time.Second

	config.Database.ConnMaxLifetime = config.Database.ConnMaxLifetime * time.Minute
	config.Database.ConnMaxIdleTime = config.Database.ConnMaxIdleTime * time.Minute
	config.Database.QueryTimeout = config.Database.QueryTimeout * time.Second
	config.Database.RetryDelay = config.Database.RetryDelay * time.Second

	config.Redis.DialTimeout = config.Redis.DialTimeout * time.Second
	config.Kafka.BatchTimeout = config.Kafka.BatchTimeout * time.Millisecond

	config.Purchase.LockTTL = config.Purchase.LockTTL * time.Second
	config.Purchase.SessionTTL = config.Purchase.SessionTTL * time.Second
	config.Purchase.SweepInterval = config.Purchase.SweepInterval * time.Second

	config.Notification.DedupTTL = config.Notification.DedupTTL * time.Hour
	config.Notification.RateWindow = config.Notification.RateWindow * time.Second
}
