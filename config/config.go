package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/internal/domain/placement"
)

// Config holds all configuration for the media downloader
type Config struct {
	Telegram TelegramConfig
	Storage  StorageConfig
	Logging  LoggingConfig
	HTTP     HTTPConfig
	S3       S3Config
}

// TelegramConfig holds Telegram MTProto configuration
type TelegramConfig struct {
	APIID             int
	APIHash           string
	DataDir           string // session files live here
	HistoryPageSize   int
	DialogLimit       int
	RequestsPerSecond int
	MaxFloodWait      time.Duration
}

// StorageConfig holds download destination defaults
type StorageConfig struct {
	DownloadDir  string
	Grouping     string
	SkipExisting bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// HTTPConfig holds the optional status server configuration
type HTTPConfig struct {
	Enabled bool
	Addr    string
}

// S3Config holds the optional object storage mirror configuration
type S3Config struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Telegram *TelegramConfig
	Storage  *StorageConfig
	Logging  *LoggingConfig
	HTTP     *HTTPConfig
	S3       *S3Config
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return cfg.Out(), nil
}

// Out splits an already loaded configuration for fx injection
func (c *Config) Out() Result {
	return Result{
		Config:   c,
		Telegram: &c.Telegram,
		Storage:  &c.Storage,
		Logging:  &c.Logging,
		HTTP:     &c.HTTP,
		S3:       &c.S3,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	apiID, err := strconv.Atoi(getEnv("TELEGRAM_API_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_API_ID: %w", err)
	}

	pageSize, err := strconv.Atoi(getEnv("TELEGRAM_HISTORY_PAGE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_HISTORY_PAGE_SIZE: %w", err)
	}

	dialogLimit, err := strconv.Atoi(getEnv("TELEGRAM_DIALOG_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_DIALOG_LIMIT: %w", err)
	}

	rps, err := strconv.Atoi(getEnv("TELEGRAM_REQUESTS_PER_SECOND", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_REQUESTS_PER_SECOND: %w", err)
	}

	maxFloodWait, err := time.ParseDuration(getEnv("TELEGRAM_MAX_FLOOD_WAIT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_MAX_FLOOD_WAIT: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			APIID:             apiID,
			APIHash:           getEnv("TELEGRAM_API_HASH", ""),
			DataDir:           getEnv("TELEGRAM_DATA_DIR", "./data"),
			HistoryPageSize:   pageSize,
			DialogLimit:       dialogLimit,
			RequestsPerSecond: rps,
			MaxFloodWait:      maxFloodWait,
		},
		Storage: StorageConfig{
			DownloadDir:  getEnv("DOWNLOAD_DIR", "./downloads"),
			Grouping:     getEnv("DOWNLOAD_GROUPING", string(placement.GroupingByChatAndType)),
			SkipExisting: getEnvBool("DOWNLOAD_SKIP_EXISTING", true),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Enabled: getEnvBool("HTTP_ENABLED", false),
			Addr:    getEnv("HTTP_ADDR", "127.0.0.1:8090"),
		},
		S3: S3Config{
			Enabled:   getEnvBool("S3_ENABLED", false),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "mediaflow"),
			Region:    getEnv("S3_REGION", ""),
			Prefix:    strings.Trim(getEnv("S3_PREFIX", ""), "/"),
			UseSSL:    getEnvBool("S3_USE_SSL", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration. Telegram credentials are optional
// here because every command can also take them as flags.
func (c *Config) Validate() error {
	if c.Telegram.APIID < 0 {
		return fmt.Errorf("TELEGRAM_API_ID must not be negative")
	}

	if c.Telegram.DataDir == "" {
		return fmt.Errorf("TELEGRAM_DATA_DIR is required")
	}

	if c.Telegram.HistoryPageSize < 1 || c.Telegram.HistoryPageSize > 100 {
		return fmt.Errorf("TELEGRAM_HISTORY_PAGE_SIZE must be between 1 and 100")
	}

	if c.Telegram.DialogLimit < 1 {
		return fmt.Errorf("TELEGRAM_DIALOG_LIMIT must be positive")
	}

	if c.Telegram.RequestsPerSecond < 1 {
		return fmt.Errorf("TELEGRAM_REQUESTS_PER_SECOND must be positive")
	}

	if _, err := placement.ParseGrouping(c.Storage.Grouping); err != nil {
		return fmt.Errorf("invalid DOWNLOAD_GROUPING: %w", err)
	}

	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required when HTTP_ENABLED is set")
	}

	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required when S3_ENABLED is set")
		}
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when S3_ENABLED is set")
		}
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool gets boolean environment variable with default value
func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
