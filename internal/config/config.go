// Package config loads server configuration with Viper.
//
// Settings come from two layers, later wins:
//  1. an optional config.yaml in the working directory
//  2. environment variables (PORT, DB_PATH, JWT_SECRET, ...)
//
// Environment variables map to config keys by underscore-for-dot: DB_PATH
// overrides db_path. Having both layers means local dev can use a checked-in
// yaml file while deployments configure everything through the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every setting the server needs.
type Config struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`

	DBPath string `mapstructure:"db_path"`

	JWTSecret  string `mapstructure:"jwt_secret"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`

	// GitHub OAuth is optional; when ClientID is empty the OAuth routes are
	// not registered.
	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	GitHubCallbackURL  string `mapstructure:"github_callback_url"`
}

// Load reads configuration from config.yaml (if present) and the
// environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("port", 8080)
	v.SetDefault("host", "")
	v.SetDefault("db_path", "completionist.db")
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("github_callback_url", "http://localhost:8080/auth/github/callback")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine — env vars and defaults carry the load.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.DBPath == "" {
		return errors.New("config: DB_PATH must not be empty")
	}
	return nil
}

// GitHubEnabled reports whether the OAuth login flow is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}
