package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// CORSAllowedOrigins lists the origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" validate:"required,min=1"`

	// LoginRateLimit is the number of login/register attempts allowed per client IP
	// within LoginRateWindow. Zero disables the limiter.
	LoginRateLimit  int           `mapstructure:"login_rate_limit"  validate:"gte=0"`
	LoginRateWindow time.Duration `mapstructure:"login_rate_window" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the persistence backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres mongo memory"`
	URL    string `mapstructure:"url"    validate:"required_unless=Driver memory"`

	// Name is the MongoDB database name. Ignored by the other drivers.
	Name string `mapstructure:"name" validate:"required"`

	// AutoMigrate applies pending PostgreSQL migrations at startup.
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetime is the validity window of an issued token.
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`

	// RenewThreshold triggers a sliding refresh when a verified token has
	// less than this much validity left.
	RenewThreshold time.Duration `mapstructure:"renew_threshold" validate:"gte=0,ltefield=TokenLifetime"`

	BcryptCost   int  `mapstructure:"bcrypt_cost"   validate:"gte=4,lte=31"`
	CookieSecure bool `mapstructure:"cookie_secure"`
}
