package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session storage backends
const (
	StorageMongoDB  = "mongodb"
	StorageRedis    = "redis"
	StorageDynamoDB = "dynamodb"
)

type Config struct {
	Port         string
	AppURL       string
	Environment  string
	LogLevel     string
	Shopify      ShopifyConfig
	Sessions     SessionsConfig
	Redis        RedisConfig
	Provisioning ProvisioningConfig
}

type ShopifyConfig struct {
	APIKey       string
	APISecret    string
	APIVersion   string
	AppProxyPath string
	AdminTimeout time.Duration
}

// HasCredentials reports whether the app key and secret are both configured
func (c ShopifyConfig) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}

type SessionsConfig struct {
	Backend         string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	RedisPrefix     string
	DynamoTable     string
	DynamoShopIndex string
}

type RedisConfig struct {
	URL string // REDIS_URL: empty disables Redis entirely
}

type ProvisioningConfig struct {
	LockTTL time.Duration
}

// Load reads the configuration from the environment. A .env file should already
// have been loaded into the process environment by the caller.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHOPIFY_API_VERSION", "2024-10")
	v.SetDefault("SHOPIFY_APP_PROXY_PATH", "/apps/abc-373")
	v.SetDefault("SHOPIFY_ADMIN_TIMEOUT", "30s")
	v.SetDefault("SESSION_STORAGE", StorageMongoDB)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "shopify_app")
	v.SetDefault("MONGODB_SESSIONS_COLLECTION", "shopify_sessions")
	v.SetDefault("REDIS_SESSION_PREFIX", "shopify_sessions")
	v.SetDefault("DYNAMODB_SESSIONS_TABLE", "shopify_sessions")
	v.SetDefault("DYNAMODB_SHOP_INDEX", "shop_index")
	v.SetDefault("PROVISIONING_LOCK_TTL", "60s")

	v.AutomaticEnv()

	adminTimeout, err := parseDuration(v, "SHOPIFY_ADMIN_TIMEOUT")
	if err != nil {
		return nil, err
	}
	lockTTL, err := parseDuration(v, "PROVISIONING_LOCK_TTL")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		AppURL:      strings.TrimSuffix(v.GetString("APP_URL"), "/"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		Shopify: ShopifyConfig{
			APIKey:       strings.TrimSpace(v.GetString("SHOPIFY_API_KEY")),
			APISecret:    strings.TrimSpace(v.GetString("SHOPIFY_API_SECRET")),
			APIVersion:   strings.TrimSpace(v.GetString("SHOPIFY_API_VERSION")),
			AppProxyPath: strings.TrimSpace(v.GetString("SHOPIFY_APP_PROXY_PATH")),
			AdminTimeout: adminTimeout,
		},
		Sessions: SessionsConfig{
			Backend:         strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORAGE"))),
			MongoURI:        v.GetString("MONGODB_URI"),
			MongoDatabase:   v.GetString("MONGODB_DATABASE"),
			MongoCollection: v.GetString("MONGODB_SESSIONS_COLLECTION"),
			RedisPrefix:     v.GetString("REDIS_SESSION_PREFIX"),
			DynamoTable:     v.GetString("DYNAMODB_SESSIONS_TABLE"),
			DynamoShopIndex: v.GetString("DYNAMODB_SHOP_INDEX"),
		},
		Redis: RedisConfig{
			URL: strings.TrimSpace(v.GetString("REDIS_URL")),
		},
		Provisioning: ProvisioningConfig{
			LockTTL: lockTTL,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Sessions.Backend {
	case StorageMongoDB, StorageDynamoDB:
	case StorageRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORAGE=%s", StorageRedis)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORAGE %q", c.Sessions.Backend)
	}
	if c.Shopify.APIVersion == "" {
		return fmt.Errorf("SHOPIFY_API_VERSION must not be empty")
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
