package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; the struct is built once at startup and passed by
// value afterwards.
type Config struct {
	Env  string // application environment (dev, test, prod)
	Port string // HTTP port to listen on

	DBDriver string // mysql or sqlite
	DBUser   string
	DBPass   string // optional
	DBHost   string
	DBPort   string
	DBName   string
	DBPath   string // sqlite database file

	JWTSecret       string
	AccessTTL       time.Duration // lifetime of session tokens issued at login
	DefaultTokenTTL time.Duration // used when a token is issued without an explicit ttl
	BcryptCost      int

	LogLevel string
	LogJSON  bool

	RabbitMQURL    string // empty disables event publishing
	AuditLogDir    string
	RequestTimeout time.Duration
}

// Load reads .env (when present) and the process environment. Every missing
// required variable is reported in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		DBDriver:        strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		DBUser:          envStr("DB_USER", ""),
		DBPass:          envStr("DB_PASS", ""),
		DBHost:          envStr("DB_HOST", ""),
		DBPort:          envStr("DB_PORT", ""),
		DBName:          envStr("DB_NAME", ""),
		DBPath:          envStr("DB_PATH", ""),
		JWTSecret:       envStr("JWT_SECRET", ""),
		AccessTTL:       time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 30)) * time.Minute,
		DefaultTokenTTL: time.Duration(envInt("DEFAULT_TOKEN_TTL_MIN", 15)) * time.Minute,
		BcryptCost:      envInt("BCRYPT_COST", 10),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogJSON:         envBool("LOG_JSON", false),
		RabbitMQURL:     envStr("RABBITMQ_URL", envStr("AMQP_URL", "")),
		AuditLogDir:     envStr("AUDIT_LOG_DIR", "logs"),
		RequestTimeout:  envDur("REQUEST_TIMEOUT", 5*time.Second),
	}

	var missing []string
	require := func(key, val string) {
		if val == "" {
			missing = append(missing, key)
		}
	}
	require("JWT_SECRET", cfg.JWTSecret)
	switch cfg.DBDriver {
	case DriverMySQL:
		require("DB_USER", cfg.DBUser)
		require("DB_HOST", cfg.DBHost)
		require("DB_PORT", cfg.DBPort)
		require("DB_NAME", cfg.DBName)
	case DriverSQLite:
		require("DB_PATH", cfg.DBPath)
	default:
		return cfg, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.AccessTTL <= 0 || cfg.DefaultTokenTTL <= 0 {
		return cfg, errors.New("token ttl values must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return cfg, fmt.Errorf("invalid BCRYPT_COST %d", cfg.BcryptCost)
	}
	return cfg, nil
}
