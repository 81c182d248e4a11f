package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/pkg/paginator"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	App        AppConfig
	Log        LogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Pagination PaginationConfig
	Cache      CacheConfig
	Seed       SeedConfig
	Jobs       JobsConfig
}

type AppConfig struct {
	Name        string        `mapstructure:"name"`
	Environment string        `mapstructure:"environment"`
	Debug       bool          `mapstructure:"debug"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Port        string        `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	ExpirationTime  time.Duration `mapstructure:"expiration_time"`
	RefreshDuration time.Duration `mapstructure:"refresh_duration"`
	Issuer          string        `mapstructure:"issuer"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type RateLimitConfig struct {
	Request  int `mapstructure:"request"`
	Duration int `mapstructure:"duration"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PaginationConfig struct {
	DefaultLimit int                  `mapstructure:"default_limit"`
	MaxLimit     int                  `mapstructure:"max_limit"`
	OffsetMode   paginator.OffsetMode `mapstructure:"offset_mode"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type SeedConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Fixtures           bool   `mapstructure:"fixtures"`
	SuperAdminUsername string `mapstructure:"super_admin_username"`
	SuperAdminPassword string `mapstructure:"super_admin_password"`
	SuperAdminEmail    string `mapstructure:"super_admin_email"`
}

// JobsConfig holds cron expressions of the background jobs
type JobsConfig struct {
	TokenCleanupSchedule string `mapstructure:"token_cleanup_schedule"`
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	offsetMode, err := paginator.ParseOffsetMode(getEnv("PAGINATION_OFFSET_MODE", "linear"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "bilemo-api"),
			Environment: getEnv("APP_ENV", constants.DefaultEnvironment),
			Port:        getEnv("APP_PORT", constants.DefaultPort),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			Timeout:     getEnvAsDuration("APP_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", ""),
			Path:  getEnv("LOGS_PATH", ""),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "bilemo"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getEnvAsDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "default_secret_key_change_in_production"),
			ExpirationTime:  getEnvAsDuration("JWT_EXPIRATION", time.Hour),
			RefreshDuration: getEnvAsDuration("JWT_REFRESH_DURATION", 72*time.Hour),
			Issuer:          getEnv("JWT_ISSUER", "bilemo-api"),
		},
		RateLimit: RateLimitConfig{
			Request:  getEnvAsInt("RATE_LIMIT_MAX_REQUEST", 60),
			Duration: getEnvAsInt("RATE_LIMIT_DURATION", 60),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getEnvAsInt("PAGINATION_DEFAULT_LIMIT", constants.DefaultLimit),
			MaxLimit:     getEnvAsInt("PAGINATION_MAX_LIMIT", constants.MaxLimit),
			OffsetMode:   offsetMode,
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Seed: SeedConfig{
			Enabled:            getEnvAsBool("SEED_ENABLED", true),
			Fixtures:           getEnvAsBool("SEED_FIXTURES", false),
			SuperAdminUsername: getEnv("SUPER_ADMIN_USERNAME", "superadmin"),
			SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "superadmin-password"),
			SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "superadmin@bilemo.local"),
		},
		Jobs: JobsConfig{
			TokenCleanupSchedule: getEnv("TOKEN_CLEANUP_SCHEDULE", "@every 1h"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Pagination.DefaultLimit < 1 {
		return fmt.Errorf("PAGINATION_DEFAULT_LIMIT must be positive, got %d", c.Pagination.DefaultLimit)
	}
	if c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("PAGINATION_MAX_LIMIT (%d) must not be lower than PAGINATION_DEFAULT_LIMIT (%d)",
			c.Pagination.MaxLimit, c.Pagination.DefaultLimit)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.App.Environment == constants.EnvProduction && c.JWT.Secret == "default_secret_key_change_in_production" {
		return errors.New("JWT_SECRET must be changed in production")
	}
	if _, err := cron.ParseStandard(c.Jobs.TokenCleanupSchedule); err != nil {
		return fmt.Errorf("TOKEN_CLEANUP_SCHEDULE %q: %w", c.Jobs.TokenCleanupSchedule, err)
	}
	return nil
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
