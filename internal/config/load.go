package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment,
// e.g. server.port is read from BLOG_SERVER_PORT.
const EnvPrefix = "BLOG"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.login_rate_limit", 5)
	v.SetDefault("server.login_rate_window", time.Minute)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.name", "blog")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("auth.token_lifetime", 7*24*time.Hour)
	v.SetDefault("auth.renew_threshold", 84*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.cookie_secure", false)
}

// bindLegacyEnv registers the keys without defaults and the unprefixed
// variable names commonly set by hosting platforms. The prefixed name wins.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port":     {EnvPrefix + "_SERVER_PORT", "PORT"},
		"database.url":    {EnvPrefix + "_DATABASE_URL", "DATABASE_URL", "MONGO_URI"},
		"auth.jwt_secret": {EnvPrefix + "_AUTH_JWT_SECRET", "JWT_SECRET"},
	}
	for key, names := range bindings {
		input := append([]string{key}, names...)
		if err := v.BindEnv(input...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}
