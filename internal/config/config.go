package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth" validate:"required"`
	Verification VerificationConfig `mapstructure:"verification" validate:"required"`
	Mail         MailConfig         `mapstructure:"mail" validate:"required"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Storage      StorageConfig      `mapstructure:"storage"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains credential signing, password hashing and per-role
// session lifetimes.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	UserTokenLifetimeMinutes     int `mapstructure:"user_token_lifetime_minutes" validate:"gt=0"`
	MerchantTokenLifetimeMinutes int `mapstructure:"merchant_token_lifetime_minutes" validate:"gt=0"`
	AdminTokenLifetimeMinutes    int `mapstructure:"admin_token_lifetime_minutes" validate:"gt=0"`

	BcryptCost int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`

	// AdminEmail and AdminPassword seed the administrator account at startup.
	// Seeding is skipped when AdminEmail is empty.
	AdminEmail    string `mapstructure:"admin_email" validate:"omitempty,email"`
	AdminPassword string `mapstructure:"admin_password" validate:"required_with=AdminEmail"`
}

// VerificationConfig controls the housekeeping of one-time codes.
type VerificationConfig struct {
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gt=0"`
}

// MailConfig selects how one-time codes are delivered.
// The "log" driver writes notifications to the application log and is meant
// for local development only.
type MailConfig struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=log smtp"`
	Host     string `mapstructure:"host" validate:"required_if=Driver smtp"`
	Port     int    `mapstructure:"port" validate:"omitempty,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required_if=Driver smtp,omitempty,email"`
}

// RedisConfig configures the request rate limiter. Rate limiting is disabled
// when URL is empty.
type RedisConfig struct {
	URL                    string `mapstructure:"url" validate:"omitempty,url"`
	RateLimitRequests      int    `mapstructure:"rate_limit_requests" validate:"gt=0"`
	RateLimitWindowMinutes int    `mapstructure:"rate_limit_window_minutes" validate:"gt=0"`
}

// StorageConfig configures the S3-compatible bucket holding avatars.
// Avatar routes are only mounted when Bucket is set.
type StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region" validate:"required_with=Bucket"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// AvatarsEnabled reports whether object storage has been configured.
func (c StorageConfig) AvatarsEnabled() bool {
	return c.Bucket != ""
}

// RateLimitEnabled reports whether a Redis instance has been configured.
func (c RedisConfig) RateLimitEnabled() bool {
	return c.URL != ""
}
