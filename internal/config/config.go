package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrTenantIDMissing is returned when no tenant is configured.
var ErrTenantIDMissing = errors.New("NEXT_PUBLIC_TENANT_ID is not set")

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string `yaml:"port" env:"SERVER_PORT"`
		Mode          string `yaml:"mode" env:"SERVER_MODE"`
		AppURL        string `yaml:"app_url" env:"NEXT_PUBLIC_APP_URL"`
		StoragePath   string `yaml:"storage_path" env:"STORAGE_PATH"`
		ContentPath   string `yaml:"content_path" env:"CONTENT_PATH"`
		TemplatesPath string `yaml:"templates_path" env:"TEMPLATES_PATH"`
	} `yaml:"server"`

	Backend struct {
		BaseURL  string        `yaml:"base_url" env:"NEXT_PUBLIC_API_BASE_URL"`
		TenantID string        `yaml:"tenant_id" env:"NEXT_PUBLIC_TENANT_ID"`
		Username string        `yaml:"username" env:"API_JWT_USER"`
		Password string        `yaml:"password" env:"API_JWT_PASS"`
		Timeout  time.Duration `yaml:"timeout" env:"API_TIMEOUT"`
	} `yaml:"backend"`

	Auth struct {
		SessionSecret     string        `yaml:"session_secret" env:"CLERK_SECRET_KEY"`
		SessionTTL        time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
		Issuer            string        `yaml:"issuer" env:"SESSION_ISSUER"`
		AdminEmail        string        `yaml:"admin_email" env:"ADMIN_EMAIL"`
		AdminPasswordHash string        `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
		CSRFKey           string        `yaml:"csrf_key" env:"CSRF_KEY"`
	} `yaml:"auth"`

	Database struct {
		Enabled         bool   `yaml:"enabled" env:"DB_ENABLED"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsPath  string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH"`
	} `yaml:"database"`

	Messaging struct {
		CostPerMessage         float64       `yaml:"cost_per_message" env:"WHATSAPP_COST_PER_MESSAGE"`
		MessagesPerMinute      int           `yaml:"messages_per_minute" env:"WHATSAPP_MESSAGES_PER_MINUTE"`
		MarketingRecipientCap  int           `yaml:"marketing_recipient_cap" env:"WHATSAPP_MARKETING_CAP"`
		ProgressPollInterval   time.Duration `yaml:"progress_poll_interval" env:"WHATSAPP_PROGRESS_INTERVAL"`
		ProgressMonitorTimeout time.Duration `yaml:"progress_monitor_timeout" env:"WHATSAPP_PROGRESS_TIMEOUT"`
	} `yaml:"messaging"`

	Scheduler struct {
		Enabled      bool          `yaml:"enabled" env:"POLL_SCHEDULER_ENABLED"`
		PollInterval time.Duration `yaml:"poll_interval" env:"POLL_SCHEDULER_INTERVAL"`
	} `yaml:"scheduler"`

	Email struct {
		ResendAPIKey string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
		From         string `yaml:"from" env:"EMAIL_FROM"`
		NotifyTo     string `yaml:"notify_to" env:"EMAIL_NOTIFY_TO"`
	} `yaml:"email"`

	RateLimit struct {
		Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS"`
		Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is fine; deployments set real variables.
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	applyDerivedDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "storage"
	config.Server.ContentPath = "content"
	config.Server.TemplatesPath = "web/templates"

	config.Backend.BaseURL = "http://localhost:8080"
	config.Backend.Timeout = 30 * time.Second

	config.Auth.SessionTTL = 12 * time.Hour
	config.Auth.Issuer = "eventadmin"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "eventadmin"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsPath = "migrations"

	config.Messaging.CostPerMessage = 0.005
	config.Messaging.MessagesPerMinute = 60
	config.Messaging.MarketingRecipientCap = 1000
	config.Messaging.ProgressPollInterval = 2 * time.Second
	config.Messaging.ProgressMonitorTimeout = 10 * time.Minute

	config.Scheduler.Enabled = true
	config.Scheduler.PollInterval = time.Minute

	config.RateLimit.Requests = 300
	config.RateLimit.Window = time.Minute

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	if err := processStructFields(config); err != nil {
		return err
	}

	// Older deployments name the backend credentials differently.
	if config.Backend.Username == "" {
		config.Backend.Username = firstEnv("AMPLIFY_API_JWT_USER", "NEXT_PUBLIC_API_JWT_USER")
	}
	if config.Backend.Password == "" {
		config.Backend.Password = firstEnv("AMPLIFY_API_JWT_PASS", "NEXT_PUBLIC_API_JWT_PASS")
	}
	return nil
}

// applyDerivedDefaults fills values that depend on other settings.
func applyDerivedDefaults(config *Config) {
	if config.Server.AppURL == "" && !config.IsProduction() {
		config.Server.AppURL = "http://localhost:3000"
	}
	config.Backend.BaseURL = strings.TrimRight(config.Backend.BaseURL, "/")
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Backend.TenantID) == "" {
		return ErrTenantIDMissing
	}

	if config.Auth.SessionSecret == "" {
		return fmt.Errorf("CLERK_SECRET_KEY is required")
	}

	if config.IsProduction() && config.Server.AppURL == "" {
		return fmt.Errorf("NEXT_PUBLIC_APP_URL is required in production")
	}

	if config.Auth.CSRFKey != "" && len(config.Auth.CSRFKey) != 32 {
		return fmt.Errorf("CSRF key must be exactly 32 bytes")
	}

	if config.Database.Enabled {
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection lifetime: %w", err)
		}
	}

	if config.Messaging.MessagesPerMinute <= 0 {
		return fmt.Errorf("messages per minute must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := GetEnv(key, ""); value != "" {
			return value
		}
	}
	return ""
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
