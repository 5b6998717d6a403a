package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Shopify     ShopifyConfig
	Storefront  StorefrontConfig
	CORS        CORSConfig
	Fetch       FetchConfig
	Fields      FieldConfig
	Cache       CacheConfig
}

type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// StorefrontConfig holds the public store URL used to build product links
// in the response (the admin domain is not browsable).
type StorefrontConfig struct {
	BaseURL string
}

type CORSConfig struct {
	// AllowedOrigins is either a single "*" or an explicit origin list.
	AllowedOrigins []string
}

type FetchConfig struct {
	PageSize             int
	MaxRetries           int
	MetafieldConcurrency int
	BatchDelay           time.Duration
	RequestTimeout       time.Duration
	ExcludeTagSubstring  string
}

// FieldConfig names the metafields (as "namespace.key") that carry the
// nursery attributes shown in the embed.
type FieldConfig struct {
	CommonName  string
	Height      string
	Caliper     string
	Sun         string
	GrowthRate  string
	ExcludeFlag string
}

// CacheConfig controls the Cache-Control directives on successful responses
// so the CDN edge can serve repeats without hitting the admin API.
type CacheConfig struct {
	SMaxAgeSeconds              int
	StaleWhileRevalidateSeconds int
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Shopify: ShopifyConfig{
			ShopDomain:  strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken: strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:  getEnvOrViper("SHOPIFY_API_VERSION", "2024-07"),
		},
		Storefront: StorefrontConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(getEnvOrViper("STOREFRONT_BASE_URL", "")), "/"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnvOrViper("CORS_ALLOWED_ORIGINS", "*")),
		},
		Fetch: FetchConfig{
			PageSize:             getIntOrViper("FETCH_PAGE_SIZE", 250),
			MaxRetries:           getIntOrViper("FETCH_MAX_RETRIES", 5),
			MetafieldConcurrency: getIntOrViper("METAFIELD_CONCURRENCY", 4),
			BatchDelay:           time.Duration(getIntOrViper("METAFIELD_BATCH_DELAY_MS", 250)) * time.Millisecond,
			RequestTimeout:       time.Duration(getIntOrViper("REQUEST_TIMEOUT_SECONDS", 55)) * time.Second,
			ExcludeTagSubstring:  getEnvOrViper("EXCLUDE_TAG_SUBSTRING", "blue"),
		},
		Fields: FieldConfig{
			CommonName:  getEnvOrViper("METAFIELD_COMMON_NAME", "custom.common_name"),
			Height:      getEnvOrViper("METAFIELD_HEIGHT", "custom.plant_height"),
			Caliper:     getEnvOrViper("METAFIELD_CALIPER", "custom.plant_caliper"),
			Sun:         getEnvOrViper("METAFIELD_SUN", "custom.sun_exposure"),
			GrowthRate:  getEnvOrViper("METAFIELD_GROWTH_RATE", "custom.growth_rate"),
			ExcludeFlag: getEnvOrViper("METAFIELD_EXCLUDE_FLAG", "custom.exclude_from_embed"),
		},
		Cache: CacheConfig{
			SMaxAgeSeconds:              getIntOrViper("CACHE_S_MAXAGE_SECONDS", 300),
			StaleWhileRevalidateSeconds: getIntOrViper("CACHE_SWR_SECONDS", 600),
		},
	}

	// Validate required fields
	if cfg.Shopify.ShopDomain == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if cfg.Fetch.PageSize < 1 || cfg.Fetch.PageSize > 250 {
		return nil, fmt.Errorf("FETCH_PAGE_SIZE must be between 1 and 250")
	}
	if cfg.Fetch.MetafieldConcurrency < 1 {
		cfg.Fetch.MetafieldConcurrency = 1
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntOrViper(key string, defaultValue int) int {
	if viper.IsSet(key) {
		if v := viper.GetInt(key); v != 0 {
			return v
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
