package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Vault     VaultConfig
	Webhook   WebhookConfig
	Labeling  LabelingConfig
	Sync      SyncConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, url.QueryEscape(c.Password), c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig holds JWT settings for the tenant auth middleware
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// VaultConfig holds credential vault settings
type VaultConfig struct {
	// MasterSecret is hashed into the 256-bit encryption key. Empty means
	// the vault runs in pass-through mode (tokens stored as plaintext).
	MasterSecret string
	// LegacyPlaintextFallback controls whether decrypt failures return the
	// input unchanged, on the assumption that pre-migration rows may still
	// hold plaintext. Disable once migration is complete.
	LegacyPlaintextFallback bool
}

// WebhookConfig holds webhook ingestion settings
type WebhookConfig struct {
	// ShopifySecret / SquareSecret are the platform-level shared secrets for
	// HMAC signature verification. Empty skips verification with a warning.
	ShopifySecret string
	SquareSecret  string
	// DefaultTenantID is the operator-configured fallback for platforms that
	// cannot embed tenant identity in a delivery
	DefaultTenantID string
	// DedupTTL is how long delivery IDs are remembered for duplicate
	// suppression
	DedupTTL time.Duration
}

// LabelingConfig holds the external labeling collaborator settings
type LabelingConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SyncConfig holds reconciliation engine settings
type SyncConfig struct {
	// Workers bounds concurrent per-item processing; 1 means sequential
	Workers int
	// HistoryDedupWindow suppresses equivalent audit rows written within
	// this span
	HistoryDedupWindow time.Duration
	// ProviderTimeout bounds outbound calls to external platforms
	ProviderTimeout time.Duration
}

// RateLimitConfig holds per-endpoint-class rate limit presets
type RateLimitConfig struct {
	Enabled  bool
	Standard RateLimitPreset
	AI       RateLimitPreset
	Auth     RateLimitPreset
	Email    RateLimitPreset
	Webhook  RateLimitPreset
	// SweepInterval is how often expired windows are evicted
	SweepInterval time.Duration
}

// RateLimitPreset is one limit/window pair for an endpoint class
type RateLimitPreset struct {
	Limit  int
	Window time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOCKSYNC_ prefix (e.g. STOCKSYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOCKSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Issuer:     v.GetString("jwt.issuer"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Vault: VaultConfig{
			MasterSecret:            v.GetString("vault.master_secret"),
			LegacyPlaintextFallback: v.GetBool("vault.legacy_plaintext_fallback"),
		},
		Webhook: WebhookConfig{
			ShopifySecret:   v.GetString("webhook.shopify_secret"),
			SquareSecret:    v.GetString("webhook.square_secret"),
			DefaultTenantID: v.GetString("webhook.default_tenant_id"),
			DedupTTL:        v.GetDuration("webhook.dedup_ttl"),
		},
		Labeling: LabelingConfig{
			Enabled: v.GetBool("labeling.enabled"),
			BaseURL: v.GetString("labeling.base_url"),
			APIKey:  v.GetString("labeling.api_key"),
			Timeout: v.GetDuration("labeling.timeout"),
		},
		Sync: SyncConfig{
			Workers:            v.GetInt("sync.workers"),
			HistoryDedupWindow: v.GetDuration("sync.history_dedup_window"),
			ProviderTimeout:    v.GetDuration("sync.provider_timeout"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("rate_limit.enabled"),
			Standard:      presetFrom(v, "rate_limit.standard"),
			AI:            presetFrom(v, "rate_limit.ai"),
			Auth:          presetFrom(v, "rate_limit.auth"),
			Email:         presetFrom(v, "rate_limit.email"),
			Webhook:       presetFrom(v, "rate_limit.webhook"),
			SweepInterval: v.GetDuration("rate_limit.sweep_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func presetFrom(v *viper.Viper, key string) RateLimitPreset {
	return RateLimitPreset{
		Limit:  v.GetInt(key + ".limit"),
		Window: v.GetDuration(key + ".window"),
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "stocksync-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "stocksync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "stocksync"
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 4 << 20 // 4MB
	}

	if cfg.Webhook.DedupTTL == 0 {
		cfg.Webhook.DedupTTL = 24 * time.Hour
	}

	if cfg.Labeling.Timeout == 0 {
		cfg.Labeling.Timeout = 10 * time.Second
	}

	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = 1
	}
	if cfg.Sync.HistoryDedupWindow == 0 {
		cfg.Sync.HistoryDedupWindow = 60 * time.Second
	}
	if cfg.Sync.ProviderTimeout == 0 {
		cfg.Sync.ProviderTimeout = 30 * time.Second
	}

	if cfg.RateLimit.Standard.Limit == 0 {
		cfg.RateLimit.Standard = RateLimitPreset{Limit: 100, Window: time.Minute}
	}
	if cfg.RateLimit.AI.Limit == 0 {
		cfg.RateLimit.AI = RateLimitPreset{Limit: 10, Window: time.Minute}
	}
	if cfg.RateLimit.Auth.Limit == 0 {
		cfg.RateLimit.Auth = RateLimitPreset{Limit: 5, Window: time.Minute}
	}
	if cfg.RateLimit.Email.Limit == 0 {
		cfg.RateLimit.Email = RateLimitPreset{Limit: 3, Window: time.Hour}
	}
	if cfg.RateLimit.Webhook.Limit == 0 {
		cfg.RateLimit.Webhook = RateLimitPreset{Limit: 300, Window: time.Minute}
	}
	if cfg.RateLimit.SweepInterval == 0 {
		cfg.RateLimit.SweepInterval = 5 * time.Minute
	}
}

// validate checks configuration consistency
func (c *Config) validate() error {
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if c.Vault.MasterSecret == "" {
			return fmt.Errorf("vault.master_secret is required in production")
		}
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("sync.workers must be at least 1")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
