package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"venuebook/internal/models"
	"venuebook/internal/pricing"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Booking    BookingConfig    `yaml:"booking"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Backend    BackendConfig    `yaml:"backend"`
	Worker     WorkerConfig     `yaml:"worker"`
	Exports    ExportConfig     `yaml:"exports"`
	Bot        BotConfig        `yaml:"bot"`
}

type BotConfig struct {
	// API is where the bot sends quotes and bookings, normally this module's HTTP API.
	API               BackendConfig `yaml:"api"`
	Hosts             []int64       `yaml:"hosts"`
	HostContacts      []string      `yaml:"host_contacts"`
	Blacklist         []int64       `yaml:"blacklist"`
	PaginationSize    int           `yaml:"pagination_size"`
	RateLimitMessages int           `yaml:"rate_limit_messages"`
	RateLimitWindow   int           `yaml:"rate_limit_window"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// PricingConfig overrides the fee constants. Absent keys keep the defaults;
// an explicit zero disables the fee.
type PricingConfig struct {
	CleaningFee    *float64 `yaml:"cleaning_fee"`
	ServiceFeeRate *float64 `yaml:"service_fee_rate"`
}

// Fees resolves the configured fees on top of the defaults.
func (p PricingConfig) Fees() pricing.Fees {
	fees := pricing.DefaultFees()
	if p.CleaningFee != nil {
		fees.CleaningFee = *p.CleaningFee
	}
	if p.ServiceFeeRate != nil {
		fees.ServiceFeeRate = *p.ServiceFeeRate
	}
	return fees
}

type BookingConfig struct {
	MaxBookingDays  int     `yaml:"max_booking_days"`
	DefaultMinHours float64 `yaml:"default_min_hours"`
	DefaultTimezone string  `yaml:"default_timezone"`
}

type CatalogConfig struct {
	VenuesFile string `yaml:"venues_file"`
}

// BackendConfig describes an HTTP booking backend.
type BackendConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	APIExtra string        `yaml:"api_extra"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type WorkerConfig struct {
	Enabled       bool          `yaml:"enabled"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken   string `yaml:"bot_token"`
	WebhookURL string `yaml:"webhook_url"`
	Debug      bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
	StoragePath   string        `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// Load reads the YAML config, expanding ${VAR} references from the
// environment and an optional .env file.
func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks what every binary needs.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	fees := c.Pricing.Fees()
	if fees.CleaningFee < 0 {
		return errors.New("pricing.cleaning_fee must not be negative")
	}
	if fees.ServiceFeeRate < 0 || fees.ServiceFeeRate >= 1 {
		return fmt.Errorf("pricing.service_fee_rate must be in [0, 1), got %v", fees.ServiceFeeRate)
	}

	if c.Booking.DefaultTimezone != "" {
		if _, err := time.LoadLocation(c.Booking.DefaultTimezone); err != nil {
			return fmt.Errorf("booking.default_timezone: %w", err)
		}
	}

	if c.Worker.Enabled && c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required when the worker is enabled")
	}
	return nil
}

// ValidateBot checks the settings only the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}
	if c.Bot.API.BaseURL == "" {
		return errors.New("bot.api.base_url is required")
	}
	return nil
}

// ValidateVenues checks a seed catalog for missing or duplicate IDs.
func ValidateVenues(venues []models.Venue) error {
	ids := make(map[string]bool)
	for _, v := range venues {
		if v.ID == "" {
			return fmt.Errorf("venue '%s' has empty ID", v.Name)
		}
		if ids[v.ID] {
			return fmt.Errorf("duplicate venue ID found: %s", v.ID)
		}
		ids[v.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 20
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 40
	}

	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Booking.DefaultMinHours == 0 {
		c.Booking.DefaultMinHours = models.DefaultMinBookingHours
	}

	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	if c.Bot.API.Timeout == 0 {
		c.Bot.API.Timeout = 10 * time.Second
	}
	if c.Bot.API.CacheTTL == 0 {
		c.Bot.API.CacheTTL = models.DefaultVenueCacheTTL * time.Second
	}

	if c.Worker.PollInterval == 0 {
		c.Worker.PollInterval = 5 * time.Second
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 5
	}
	if c.Worker.InitialDelay == 0 {
		c.Worker.InitialDelay = 2 * time.Second
	}
	if c.Worker.MaxDelay == 0 {
		c.Worker.MaxDelay = time.Minute
	}
	if c.Worker.BackoffFactor == 0 {
		c.Worker.BackoffFactor = 2
	}

	if c.Backup.Interval == 0 {
		c.Backup.Interval = 24 * time.Hour
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}

	// Bot defaults
	if c.Bot.PaginationSize == 0 {
		c.Bot.PaginationSize = 6
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
}

// IsHost reports whether the Telegram user may use host commands.
func (c *Config) IsHost(userID int64) bool {
	for _, id := range c.Bot.Hosts {
		if id == userID {
			return true
		}
	}
	return false
}

// IsBlacklisted reports whether the Telegram user is blocked from the bot.
func (c *Config) IsBlacklisted(userID int64) bool {
	for _, id := range c.Bot.Blacklist {
		if id == userID {
			return true
		}
	}
	return false
}
