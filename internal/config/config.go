package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// Config is the whole runtime configuration, read once from the environment at startup.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Recurring RecurringConfig
	Events    EventsConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	SQLitePath      string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
	Migrations      MigrationConfig
}

// MigrationConfig drives the golang-migrate runner used for postgres.
type MigrationConfig struct {
	Dir           string
	SeedsDir      string
	AutoMigrate   bool
	LoadSeeds     bool
	ReadyAttempts int
	ReadyInterval time.Duration
}

type JWTConfig struct {
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	PrivateKey           *rsa.PrivateKey
	PublicKey            *rsa.PublicKey
	Issuer               string
}

type SecurityConfig struct {
	BCryptCost          int
	RateLimitPerSecond  int
	PasswordMinLength   int
	RequireUppercase    bool
	RequireLowercase    bool
	RequireNumbers      bool
	RequireSpecialChars bool
}

// RecurringConfig controls the background processor that materialises recurring transactions.
type RecurringConfig struct {
	Enabled    bool
	Interval   time.Duration
	MaxCatchUp int
}

// EventsConfig configures the AMQP publisher. An empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load builds a Config from the process environment. Unset variables take
// their defaults; malformed values and unusable combinations are errors.
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Server: ServerConfig{
			Port:             env.str("SERVER_PORT", "8080"),
			Host:             env.str("SERVER_HOST", "localhost"),
			Environment:      env.str("APP_ENV", EnvDevelopment),
			ReadTimeout:      env.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     env.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout:  env.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSAllowOrigins: env.list("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:          env.str("DB_DRIVER", DriverPostgres),
			Host:            env.str("DB_HOST", "localhost"),
			Port:            env.str("DB_PORT", "5432"),
			User:            env.str("DB_USER", "finance_user"),
			Password:        env.str("DB_PASSWORD", "finance_password"),
			Name:            env.str("DB_NAME", "finance_db"),
			SSLMode:         env.str("DB_SSL_MODE", "disable"),
			SQLitePath:      env.str("DB_SQLITE_PATH", "finance.db"),
			MaxConnections:  env.int("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    env.int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.duration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogQueries:      env.bool("DB_LOG_QUERIES", false),
			Migrations: MigrationConfig{
				Dir:           env.str("MIGRATIONS_PATH", "db/migrations"),
				SeedsDir:      env.str("SEEDS_PATH", "db/seeds"),
				AutoMigrate:   env.bool("AUTO_MIGRATE", false),
				LoadSeeds:     env.bool("SEED_DATABASE", false),
				ReadyAttempts: env.int("DB_READY_ATTEMPTS", 30),
				ReadyInterval: env.duration("DB_READY_INTERVAL", 2*time.Second),
			},
		},
		Security: SecurityConfig{
			BCryptCost:          env.int("BCRYPT_COST", 12),
			RateLimitPerSecond:  env.int("RATE_LIMIT_PER_SECOND", 5),
			PasswordMinLength:   env.int("PASSWORD_MIN_LENGTH", 8),
			RequireUppercase:    env.bool("PASSWORD_REQUIRE_UPPERCASE", true),
			RequireLowercase:    env.bool("PASSWORD_REQUIRE_LOWERCASE", true),
			RequireNumbers:      env.bool("PASSWORD_REQUIRE_NUMBERS", true),
			RequireSpecialChars: env.bool("PASSWORD_REQUIRE_SPECIAL", false),
		},
		JWT: JWTConfig{
			AccessTokenDuration:  env.duration("JWT_ACCESS_TOKEN_DURATION", 24*time.Hour),
			RefreshTokenDuration: env.duration("JWT_REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			Issuer:               env.str("JWT_ISSUER", "finance-assistant"),
		},
		Recurring: RecurringConfig{
			Enabled:    env.bool("RECURRING_ENABLED", true),
			Interval:   env.duration("RECURRING_INTERVAL", time.Hour),
			MaxCatchUp: env.int("RECURRING_MAX_CATCH_UP", 366),
		},
		Events: EventsConfig{
			AMQPURL:  env.str("AMQP_URL", ""),
			Exchange: env.str("AMQP_EXCHANGE", "finance.transactions"),
		},
		Logging: LoggingConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "text"),
		},
	}
	if err := env.err(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() && env.unset("CORS_ALLOW_ORIGINS") {
		slog.Warn("CORS_ALLOW_ORIGINS not set in production, allowing all origins")
	}

	if err := cfg.resolveJWTKeys(env.str("JWT_PRIVATE_KEY", ""), env.str("JWT_PUBLIC_KEY", "")); err != nil {
		return nil, fmt.Errorf("failed to load RSA keys: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.IsProduction() && c.Database.Driver == DriverSQLite {
		return errors.New("sqlite driver is not allowed in production")
	}

	if c.Recurring.Enabled && c.Recurring.Interval <= 0 {
		return errors.New("RECURRING_INTERVAL must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL returns the postgres connection URL used by the migrate command.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool { return c.Server.Environment == EnvDevelopment }
func (c *Config) IsProduction() bool  { return c.Server.Environment == EnvProduction }
func (c *Config) IsTesting() bool     { return c.Server.Environment == EnvTesting }

var slogLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *LoggingConfig) SlogLevel() slog.Level {
	if level, ok := slogLevels[strings.ToLower(c.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}
