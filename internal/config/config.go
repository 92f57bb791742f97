package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	ExitPolicyStrict     = "strict"
	ExitPolicyPermissive = "permissive"

	defaultDSN     = "host=localhost user=postgres password=postgres dbname=laptop_inventory port=5432 sslmode=disable"
	defaultOrigins = "http://localhost:5173"
)

type Config struct {
	AppEnv      string
	HTTPPort    string
	StoreDriver string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	AdminUsername string
	AdminPassword string

	Logger    LoggerConfig
	Inventory InventoryConfig
	Invoicing InvoicingConfig

	// keys whose value could not be parsed; the default was used instead
	invalid []string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type InventoryConfig struct {
	ExitPolicy       string
	AlertAutoClear   bool
	ActivityLogLimit int
}

type InvoicingConfig struct {
	TaxRate decimal.Decimal
}

func Load() *Config {
	var invalid []string
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		StoreDriver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		DatabaseDSN:   getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", defaultOrigins),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", "console"),
		},
		Inventory: InventoryConfig{
			ExitPolicy:       strings.ToLower(getEnv("INVENTORY_EXIT_POLICY", ExitPolicyStrict)),
			AlertAutoClear:   getEnvBool("ALERT_AUTO_CLEAR", true, &invalid),
			ActivityLogLimit: getEnvInt("ACTIVITY_LOG_LIMIT", 500, &invalid),
		},
		Invoicing: InvoicingConfig{
			TaxRate: getEnvDecimal("TAX_RATE", decimal.RequireFromString("0.12"), &invalid),
		},
	}
	cfg.invalid = invalid

	for _, key := range invalid {
		log.Printf("[WARN] %s=%q could not be parsed; using the default.", key, os.Getenv(key))
	}
	if cfg.DatabaseDSN == defaultDSN && cfg.StoreDriver == StoreDriverPostgres {
		log.Println("[WARN] DATABASE_DSN uses the default value; set your own Postgres connection for production.")
	}
	if cfg.CORSOrigins == defaultOrigins {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS uses the default value; set your own domain for production.")
	}
	if cfg.AdminPassword == "admin123" {
		log.Println("[WARN] ADMIN_PASSWORD uses the built-in placeholder password.")
	}

	return cfg
}

// Validate reports the first setting that the server cannot start with.
func (c *Config) Validate() error {
	if len(c.invalid) > 0 {
		return fmt.Errorf("cannot parse %s", strings.Join(c.invalid, ", "))
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of %s, %s", c.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}
	switch c.Inventory.ExitPolicy {
	case ExitPolicyStrict, ExitPolicyPermissive:
	default:
		return fmt.Errorf("INVENTORY_EXIT_POLICY %q is not one of %s, %s", c.Inventory.ExitPolicy, ExitPolicyStrict, ExitPolicyPermissive)
	}
	if c.Inventory.ActivityLogLimit <= 0 {
		return fmt.Errorf("ACTIVITY_LOG_LIMIT must be positive")
	}
	if c.Invoicing.TaxRate.IsNegative() {
		return fmt.Errorf("TAX_RATE cannot be negative")
	}
	if strings.TrimSpace(c.AdminUsername) == "" || c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int, invalid *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*invalid = append(*invalid, key)
		return def
	}
	return i
}

func getEnvBool(key string, def bool, invalid *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*invalid = append(*invalid, key)
		return def
	}
	return b
}

func getEnvDecimal(key string, def decimal.Decimal, invalid *[]string) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		*invalid = append(*invalid, key)
		return def
	}
	return d
}
