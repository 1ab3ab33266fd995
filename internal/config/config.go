package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Mail      MailConfig      `mapstructure:"mail"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                int    `mapstructure:"port"                  validate:"required,gt=0,lt=65536"`
	LogLevel            string `mapstructure:"log_level"             validate:"required,oneof=debug info warn error"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"  validate:"gte=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For /
	// X-Real-IP. Only enable it behind a proxy that overwrites them.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                        string `mapstructure:"jwt_secret"                          validate:"required,min=32"`
	TokenLifetimeMinutes             int    `mapstructure:"token_lifetime_minutes"              validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes      int    `mapstructure:"refresh_token_lifetime_minutes"      validate:"required,gt=0,lt=131040"`
	ConfirmationTokenLifetimeMinutes int    `mapstructure:"confirmation_token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost                       int    `mapstructure:"bcrypt_cost"                         validate:"gte=4,lte=31"`
}

// RedisConfig controls the optional Redis connection used for rate limiting.
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"     validate:"required_if=Enabled true"`
}

// RateLimitConfig parameterizes the token bucket applied to the auth endpoints.
type RateLimitConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Capacity         int    `mapstructure:"capacity"           validate:"gte=0"`
	RefillTokens     int    `mapstructure:"refill_tokens"      validate:"gte=0"`
	RefillIntervalMS int    `mapstructure:"refill_interval_ms" validate:"gte=0"`
	TTLSeconds       int    `mapstructure:"ttl_seconds"        validate:"gte=0"`
	Prefix           string `mapstructure:"prefix"`
}

// MailConfig selects and configures the confirmation-mail dispatcher.
type MailConfig struct {
	Driver         string `mapstructure:"driver"           validate:"required,oneof=log amqp"`
	AMQPURL        string `mapstructure:"amqp_url"         validate:"required_if=Driver amqp"`
	Queue          string `mapstructure:"queue"            validate:"required"`
	ConfirmURLBase string `mapstructure:"confirm_url_base" validate:"required,url"`
	Workers        int    `mapstructure:"workers"          validate:"gt=0"`
	QueueSize      int    `mapstructure:"queue_size"       validate:"gt=0"`
}
