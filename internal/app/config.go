package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete kiosk configuration, loadable from environment
// variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr       string        `default:"0.0.0.0:8080" usage:"Kiosk server listen address"`
	APIBaseURL string        `usage:"Storefront backend root URL (STOREFRONT_API_BASE_URL)" flag:"api-base-url"`
	APITimeout time.Duration `default:"10s" usage:"Per-request backend timeout" flag:"api-timeout"`

	StorageDriver string `default:"file" usage:"Durable client-state backend: file or postgres" flag:"storage-driver"`
	StoragePath   string `default:"storefront-state.json" usage:"State file path for the file driver" flag:"storage-path"`
	DatabaseURL   string `usage:"PostgreSQL URL for the postgres driver (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	PromoFilterPath string `usage:"Path to the promo code bloom filter; empty disables the prescreen" flag:"promo-filter"`

	ItemsPerPage  int           `default:"16" usage:"Products per collections page" flag:"items-per-page"`
	MaxPrice      int           `default:"1000" usage:"Price slider ceiling" flag:"max-price"`
	DebounceQuiet time.Duration `default:"500ms" usage:"Quiet period before a price range commits" flag:"debounce-quiet"`

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.APIBaseURL == "" {
		return nil, errors.New("backend URL is required: set STOREFRONT_API_BASE_URL")
	}
	switch cfg.StorageDriver {
	case "file", "postgres":
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STOREFRONT_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
