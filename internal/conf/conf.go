package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/DevRickLin/matchbot/internal/biz/usecase"
)

// maxGeneratorTimeout bounds the optional backend call
const maxGeneratorTimeout = 15 * time.Second

// Config represents application configuration
type Config struct {
	// Storage configuration
	Store StoreConfig

	// HTTP API configuration
	HTTP HTTPConfig

	// Processor configuration
	Processor ProcessorConfig

	// Engine tuning
	Engine EngineConfig

	// Generative backend configuration (optional)
	OpenAI OpenAIConfig

	// Redis configuration (optional)
	Redis RedisConfig

	// Feishu audit mirror configuration (optional)
	Feishu FeishuConfig

	// Logging configuration
	Log LogConfig
}

// StoreConfig contains storage configuration
type StoreConfig struct {
	DBPath string `env:"MATCHBOT_DB_PATH"`
}

// HTTPConfig contains API server configuration
type HTTPConfig struct {
	Addr string `env:"MATCHBOT_HTTP_ADDR" envDefault:"127.0.0.1:9876"`
}

// ProcessorConfig contains delivery processor configuration
type ProcessorConfig struct {
	Interval  time.Duration `env:"MATCHBOT_PROCESS_INTERVAL" envDefault:"5s"`
	BatchSize int           `env:"MATCHBOT_PROCESS_BATCH" envDefault:"50"`
	ClaimTTL  time.Duration `env:"MATCHBOT_CLAIM_TTL" envDefault:"30s"`
}

// EngineConfig contains conversation and feed tuning
type EngineConfig struct {
	PersonalitiesPath string        `env:"MATCHBOT_PERSONALITIES_PATH"`
	HistoryLimit      int           `env:"MATCHBOT_HISTORY_LIMIT" envDefault:"20"`
	SwipeWindow       int           `env:"MATCHBOT_SWIPE_WINDOW" envDefault:"100"`
	PreferenceTTL     time.Duration `env:"MATCHBOT_PREFERENCE_TTL" envDefault:"5m"`
	Seed              int64         `env:"MATCHBOT_SEED"` // 0 seeds from the clock
}

// OpenAIConfig contains the OpenAI-compatible backend configuration
type OpenAIConfig struct {
	APIKey    string        `env:"OPENAI_API_KEY"`
	BaseURL   string        `env:"OPENAI_BASE_URL"`
	Model     string        `env:"OPENAI_MODEL"`
	Timeout   time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"4s"`
	MaxTokens int           `env:"GENERATOR_MAX_TOKENS" envDefault:"80"`
}

// Enabled reports whether the backend is configured
func (c *OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID       string `env:"FEISHU_APP_ID"`
	AppSecret   string `env:"FEISHU_APP_SECRET"`
	AuditChatID string `env:"FEISHU_AUDIT_CHAT_ID"`
}

// Enabled reports whether the audit mirror is configured
func (c *FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.AuditChatID != ""
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Store.DBPath == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.Store.DBPath = filepath.Join(homeDir, ".matchbot", "matchbot.db")
	} else if strings.HasPrefix(cfg.Store.DBPath, "~/") {
		homeDir, _ := os.UserHomeDir()
		cfg.Store.DBPath = filepath.Join(homeDir, cfg.Store.DBPath[2:])
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch {
	case c.Processor.Interval <= 0:
		return &ConfigError{Field: "MATCHBOT_PROCESS_INTERVAL", Message: "must be positive"}
	case c.Processor.BatchSize <= 0:
		return &ConfigError{Field: "MATCHBOT_PROCESS_BATCH", Message: "must be positive"}
	case c.Processor.ClaimTTL <= 0:
		return &ConfigError{Field: "MATCHBOT_CLAIM_TTL", Message: "must be positive"}
	case c.Engine.HistoryLimit <= 0:
		return &ConfigError{Field: "MATCHBOT_HISTORY_LIMIT", Message: "must be positive"}
	case c.Engine.SwipeWindow <= 0:
		return &ConfigError{Field: "MATCHBOT_SWIPE_WINDOW", Message: "must be positive"}
	case c.Engine.PreferenceTTL < 0:
		return &ConfigError{Field: "MATCHBOT_PREFERENCE_TTL", Message: "must not be negative"}
	case c.OpenAI.Timeout <= 0 || c.OpenAI.Timeout > maxGeneratorTimeout:
		return &ConfigError{Field: "GENERATOR_TIMEOUT", Message: "must be between 0 and 15s"}
	case c.OpenAI.MaxTokens <= 0:
		return &ConfigError{Field: "GENERATOR_MAX_TOKENS", Message: "must be positive"}
	case c.Store.DBPath == "":
		return &ConfigError{Field: "MATCHBOT_DB_PATH", Message: "required"}
	}
	if (c.Feishu.AppID == "") != (c.Feishu.AppSecret == "") {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "must be set together"}
	}
	return nil
}

// ToQueueConfig converts to queue usecase configuration
func (c *Config) ToQueueConfig() usecase.QueueConfig {
	return usecase.QueueConfig{
		BatchSize: c.Processor.BatchSize,
		ClaimTTL:  c.Processor.ClaimTTL,
	}
}

// ToPreferenceConfig converts to preference usecase configuration
func (c *Config) ToPreferenceConfig() usecase.PreferenceConfig {
	return usecase.PreferenceConfig{
		SwipeWindow: c.Engine.SwipeWindow,
		CacheTTL:    c.Engine.PreferenceTTL,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
