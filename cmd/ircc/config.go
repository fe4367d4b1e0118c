package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "IRCC_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "ircc.yaml"
)

// Config holds the connection settings for a session.
type Config struct {
	// Addr is the "host:port" of the IRC server.
	Addr string `mapstructure:"addr" yaml:"addr"`

	// WebsocketURL, when set, connects over a ws:// or wss:// gateway
	// instead of dialing Addr over TCP.
	WebsocketURL string `mapstructure:"websocket_url" yaml:"websocket_url"`

	Nickname string `mapstructure:"nickname" yaml:"nickname"`
	User     string `mapstructure:"user" yaml:"user"`
	Realname string `mapstructure:"realname" yaml:"realname"`
	Pass     string `mapstructure:"pass" yaml:"pass"`

	// Channel is joined automatically after registration, when set.
	Channel string `mapstructure:"channel" yaml:"channel"`

	// HistoryLimit is the number of messages retained per channel or query.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Addr:         "localhost:6667",
		Nickname:     "gopher",
		User:         "gopher",
		Realname:     "gopher",
		HistoryLimit: 100,
		LogLevel:     "warn",
	}
}

// loadConfig builds configuration from defaults, an optional config file, and
// env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < flags.
func loadConfig(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("websocket_url", cfg.WebsocketURL)
	v.SetDefault("nickname", cfg.Nickname)
	v.SetDefault("user", cfg.User)
	v.SetDefault("realname", cfg.Realname)
	v.SetDefault("pass", cfg.Pass)
	v.SetDefault("channel", cfg.Channel)
	v.SetDefault("history_limit", cfg.HistoryLimit)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetEnvPrefix("IRCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
