package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// CurrentVersion is the expected version of the config file.
const CurrentVersion = 1

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version    int              `koanf:"version"`
	Debug      Debug            `koanf:"debug"`
	Sentry     Sentry           `koanf:"sentry"`
	Redis      Redis            `koanf:"redis"`
	Grok       Grok             `koanf:"grok"`
	CRCON      CRCON            `koanf:"crcon"`
	Discord    Discord          `koanf:"discord"`
	Moderation ModerationConfig `koanf:"moderation"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
}

// Sentry contains error reporting configuration.
type Sentry struct {
	// DSN for the Sentry project. Empty disables reporting.
	DSN string `koanf:"dsn"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Grok contains configuration for the reasoning service endpoint.
type Grok struct {
	// Base URL of the chat-completions endpoint.
	BaseURL string `koanf:"base_url"`
	// API key for authentication. Empty disables recommendations.
	APIKey string `koanf:"api_key"`
	// Model to request recommendations from.
	Model string `koanf:"model"`
	// Maximum request attempts on network failure.
	MaxAttempts uint64 `koanf:"max_attempts"`
	// Backoff base between attempts in milliseconds. The delay grows
	// linearly with the attempt number.
	RetryBackoff int `koanf:"retry_backoff"`
	// Maximum concurrent requests to the endpoint.
	MaxConcurrent int64 `koanf:"max_concurrent"`
}

// CRCON contains configuration for the game-server control API.
type CRCON struct {
	// Base URL of the CRCON instance.
	BaseURL string `koanf:"base_url"`
	// API token for authentication.
	APIToken string `koanf:"api_token"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
	// Channel ID where player reports arrive.
	ReportChannelID uint64 `koanf:"report_channel_id"`
	// Language used for admin-facing messages (de or en).
	UserLanguage string `koanf:"user_language"`
}

// ModerationConfig contains thresholds for the action pipeline.
type ModerationConfig struct {
	// Temp-ban duration in hours above which explicit confirmation is required.
	TempBanWarningHours int `koanf:"temp_ban_warning_hours"`
	// Maximum temp-ban duration in hours.
	MaxTempBanHours int `koanf:"max_temp_ban_hours"`
	// Contact link appended to player-facing messages.
	ContactLink string `koanf:"contact_link"`
}

// LoadConfig loads the config file from the first matching search path and
// returns the parsed configuration together with the directory it was found in.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".watchdog",
		homeDir + "/.watchdog/config",
		"/etc/watchdog/config",
		"/app/config",
		"config",
		".",
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := path + "/config.toml"
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: config.toml", ErrConfigFileNotFound)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// checkConfigVersion validates the version of the config file.
func checkConfigVersion(version int) error {
	if version == 0 {
		return ErrConfigVersionMissing
	}

	if version != CurrentVersion {
		return fmt.Errorf("%w: found version %d, expected %d (see config/config.toml for the current format)",
			ErrConfigVersionMismatch, version, CurrentVersion)
	}

	return nil
}
