package config

import (
	"fmt"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Purchase     PurchaseConfig     `mapstructure:"purchase"`
	Inventory    InventoryConfig    `mapstructure:"inventory"`
	Shipping     ShippingConfig     `mapstructure:"shipping"`
	Notification NotificationConfig `mapstructure:"notification"`
	Payment      PaymentConfig      `mapstructure:"payment"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
	AllowedOrigins    []string      `mapstructure:"allowedOrigins"`
}

// StorageConfig selects where locks, stock, sessions and orders live
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // memory | redis | postgres
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dialTimeout"` // seconds
}

// KafkaConfig contains broker settings for domain events and outgoing e-mail
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	EventsTopic  string        `mapstructure:"eventsTopic"`
	EmailTopic   string        `mapstructure:"emailTopic"`
	BatchTimeout time.Duration `mapstructure:"batchTimeout"` // milliseconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// PurchaseConfig contains lock and checkout session lifetimes
type PurchaseConfig struct {
	LockTTL       time.Duration `mapstructure:"lockTtl"`       // seconds
	SessionTTL    time.Duration `mapstructure:"sessionTtl"`    // seconds
	SweepInterval time.Duration `mapstructure:"sweepInterval"` // seconds
}

// InventoryConfig contains stock defaults
type InventoryConfig struct {
	DefaultStock      int `mapstructure:"defaultStock"`
	LowStockThreshold int `mapstructure:"lowStockThreshold"`
}

// ShippingConfig contains the flat-rate shipping policy
type ShippingConfig struct {
	Carrier               string   `mapstructure:"carrier"`
	Fee                   int64    `mapstructure:"fee"`
	TaxRate               string   `mapstructure:"taxRate"`
	FreeShippingThreshold int64    `mapstructure:"freeShippingThreshold"`
	MinimumOrder          int64    `mapstructure:"minimumOrder"`
	ExcludedAreas         []string `mapstructure:"excludedAreas"`
}

// NotificationConfig contains e-mail settings
type NotificationConfig struct {
	Sender     string        `mapstructure:"sender"` // log | kafka
	From       string        `mapstructure:"from"`
	FromName   string        `mapstructure:"fromName"`
	AdminEmail string        `mapstructure:"adminEmail"`
	ShopName   string        `mapstructure:"shopName"`
	BaseURL    string        `mapstructure:"baseUrl"`
	DedupTTL   time.Duration `mapstructure:"dedupTtl"`   // hours
	RateLimit  int           `mapstructure:"rateLimit"`  // e-mails per recipient per window
	RateWindow time.Duration `mapstructure:"rateWindow"` // seconds
}

// PaymentConfig contains payment settings
type PaymentConfig struct {
	Currency     string `mapstructure:"currency"`
	RetryURLBase string `mapstructure:"retryUrlBase"`
}

// CatalogConfig lists the products on sale
type CatalogConfig struct {
	Products []ProductConfig `mapstructure:"products"`
}

// ProductConfig is one catalog entry. TaxRate is a decimal string such as "0.08".
type ProductConfig struct {
	ID               string `mapstructure:"id"`
	Name             string `mapstructure:"name"`
	Price            int64  `mapstructure:"price"`
	TaxRate          string `mapstructure:"taxRate"`
	Unit             string `mapstructure:"unit"`
	MinOrderQuantity int    `mapstructure:"minOrderQuantity"`
	MaxOrderQuantity int    `mapstructure:"maxOrderQuantity"`
	SaleType         string `mapstructure:"saleType"`
	InitialStock     *int   `mapstructure:"initialStock"`
}

// Policy converts the shipping settings to the domain policy
func (c ShippingConfig) Policy() (entity.ShippingPolicy, error) {
	rate, err := parseRate(c.TaxRate)
	if err != nil {
		return entity.ShippingPolicy{}, fmt.Errorf("shipping.taxRate: %w", err)
	}
	return entity.ShippingPolicy{
		Carrier:               c.Carrier,
		Fee:                   c.Fee,
		TaxRate:               rate,
		FreeShippingThreshold: c.FreeShippingThreshold,
		MinimumOrder:          c.MinimumOrder,
		ExcludedAreas:         c.ExcludedAreas,
	}, nil
}

// ProductList converts the catalog entries to domain products
func (c CatalogConfig) ProductList() ([]entity.Product, error) {
	products := make([]entity.Product, 0, len(c.Products))
	for _, p := range c.Products {
		rate, err := parseRate(p.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("catalog product %s taxRate: %w", p.ID, err)
		}
		saleType := entity.SaleType(p.SaleType)
		if saleType == "" {
			saleType = entity.SaleTypeNormal
		}
		products = append(products, entity.Product{
			ID:               p.ID,
			Name:             p.Name,
			UnitPrice:        p.Price,
			TaxRate:          rate,
			Unit:             p.Unit,
			MinOrderQuantity: p.MinOrderQuantity,
			MaxOrderQuantity: p.MaxOrderQuantity,
			SaleType:         saleType,
		})
	}
	return products, nil
}

// InitialStock returns the stock each product starts with: its own initialStock or defaultStock
func (c *Config) InitialStock() map[string]int {
	initial := make(map[string]int, len(c.Catalog.Products))
	for _, p := range c.Catalog.Products {
		stock := c.Inventory.DefaultStock
		if p.InitialStock != nil {
			stock = *p.InitialStock
		}
		initial[p.ID] = stock
	}
	return initial
}

func parseRate(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("rate %s must be in [0, 1)", raw)
	}
	return rate, nil
}
