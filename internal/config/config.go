// Package config loads the application configuration from the environment
// and optional files.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort string
	LogLevel   slog.Level
	LogFormat  string

	GitHubAppID          int64
	GitHubWebhookSecret  string
	GitHubPrivateKeyPath string

	// BotLogin is the bot's own account login, used to ignore self-authored
	// comments and to find prior bot comments for idempotency checks.
	BotLogin string

	MaxWorkers int

	// Retry parameters for transient platform failures. Bounded so retries
	// never outlast a typical rate-limit window.
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// RulesPath optionally points at a YAML rules file overriding the
	// compiled-in classification tables.
	RulesPath string

	SecurityScanning       bool
	WelcomeNewContributors bool

	EnableAIReviews bool
	GeminiAPIKey    string
	GeminiModel     string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/repo-butler-app.private-key.pem")
	viper.SetDefault("BOT_LOGIN", "repo-butler[bot]")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("RETRY_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BASE_DELAY", "500ms")
	viper.SetDefault("SECURITY_SCANNING", true)
	viper.SetDefault("WELCOME_NEW_CONTRIBUTORS", true)
	viper.SetDefault("ENABLE_AI_REVIEWS", false)
	viper.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file found, relying on environment", "error", err)
		}
	}

	if viper.GetInt64("GITHUB_APP_ID") == 0 {
		return nil, fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if viper.GetString("GITHUB_WEBHOOK_SECRET") == "" {
		return nil, fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}
	if viper.GetBool("ENABLE_AI_REVIEWS") && viper.GetString("GEMINI_API_KEY") == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set when ENABLE_AI_REVIEWS is on")
	}

	retryDelay := viper.GetDuration("RETRY_BASE_DELAY")
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	attempts := viper.GetInt("RETRY_ATTEMPTS")
	if attempts < 1 {
		attempts = 1
	}

	return &Config{
		ServerPort:             viper.GetString("SERVER_PORT"),
		LogLevel:               parseLogLevel(viper.GetString("LOG_LEVEL")),
		LogFormat:              viper.GetString("LOG_FORMAT"),
		GitHubAppID:            viper.GetInt64("GITHUB_APP_ID"),
		GitHubWebhookSecret:    viper.GetString("GITHUB_WEBHOOK_SECRET"),
		GitHubPrivateKeyPath:   viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		BotLogin:               viper.GetString("BOT_LOGIN"),
		MaxWorkers:             viper.GetInt("MAX_WORKERS"),
		RetryAttempts:          attempts,
		RetryBaseDelay:         retryDelay,
		RulesPath:              viper.GetString("RULES_PATH"),
		SecurityScanning:       viper.GetBool("SECURITY_SCANNING"),
		WelcomeNewContributors: viper.GetBool("WELCOME_NEW_CONTRIBUTORS"),
		EnableAIReviews:        viper.GetBool("ENABLE_AI_REVIEWS"),
		GeminiAPIKey:           viper.GetString("GEMINI_API_KEY"),
		GeminiModel:            viper.GetString("GEMINI_MODEL"),
	}, nil
}

// parseLogLevel maps a log level string onto slog.Level, defaulting to info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", s)
		return slog.LevelInfo
	}
}
