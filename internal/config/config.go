package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Logging      LoggingConfig
	Matching     MatchingConfig
	Registration RegistrationConfig
	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	// Type is "postgres" or "memory".
	Type string
}

type LoggingConfig struct {
	Level string
}

type MatchingConfig struct {
	// Strategy is "random" or "greedy".
	Strategy string
	// Scorer is "random" or "similarity".
	Scorer           string
	ScoreMin         int
	ScoreMax         int
	OnDemandScoreMin int
	OnDemandScoreMax int
	LockTTL          time.Duration
	LockWait         time.Duration
	AutoFillInterval time.Duration
	ExplanationTTL   time.Duration
}

type RegistrationConfig struct {
	RequireWhitelist bool
}

const (
	StorageTypePostgres = "postgres"
	StorageTypeMemory   = "memory"
)

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Type: strings.ToLower(v.GetString("STORAGE_TYPE")),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Matching: MatchingConfig{
			Strategy:         strings.ToLower(v.GetString("MATCH_STRATEGY")),
			Scorer:           strings.ToLower(v.GetString("MATCH_SCORER")),
			ScoreMin:         v.GetInt("MATCH_SCORE_MIN"),
			ScoreMax:         v.GetInt("MATCH_SCORE_MAX"),
			OnDemandScoreMin: v.GetInt("MATCH_ON_DEMAND_SCORE_MIN"),
			OnDemandScoreMax: v.GetInt("MATCH_ON_DEMAND_SCORE_MAX"),
			LockTTL:          v.GetDuration("MATCH_LOCK_TTL"),
			LockWait:         v.GetDuration("MATCH_LOCK_WAIT"),
			AutoFillInterval: v.GetDuration("MATCH_AUTO_FILL_INTERVAL"),
			ExplanationTTL:   v.GetDuration("MATCH_EXPLANATION_TTL"),
		},
		Registration: RegistrationConfig{
			RequireWhitelist: v.GetBool("REGISTRATION_REQUIRE_WHITELIST"),
		},
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("STORAGE_TYPE", StorageTypePostgres)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MATCH_STRATEGY", "random")
	v.SetDefault("MATCH_SCORER", "random")
	v.SetDefault("MATCH_SCORE_MIN", 60)
	v.SetDefault("MATCH_SCORE_MAX", 99)
	v.SetDefault("MATCH_ON_DEMAND_SCORE_MIN", 75)
	v.SetDefault("MATCH_ON_DEMAND_SCORE_MAX", 98)
	v.SetDefault("MATCH_LOCK_TTL", "30s")
	v.SetDefault("MATCH_LOCK_WAIT", "5s")
	v.SetDefault("MATCH_AUTO_FILL_INTERVAL", "0s")
	v.SetDefault("MATCH_EXPLANATION_TTL", "24h")
	v.SetDefault("REGISTRATION_REQUIRE_WHITELIST", false)
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageTypePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	m := c.Matching
	if m.Strategy != "random" && m.Strategy != "greedy" {
		return fmt.Errorf("unknown match strategy %q", m.Strategy)
	}
	if m.Scorer != "random" && m.Scorer != "similarity" {
		return fmt.Errorf("unknown match scorer %q", m.Scorer)
	}
	if err := validateRange("match score", m.ScoreMin, m.ScoreMax); err != nil {
		return err
	}
	if err := validateRange("on-demand match score", m.OnDemandScoreMin, m.OnDemandScoreMax); err != nil {
		return err
	}
	if m.LockTTL <= 0 {
		return fmt.Errorf("match lock ttl must be positive")
	}
	if m.AutoFillInterval < 0 {
		return fmt.Errorf("match auto fill interval must not be negative")
	}
	return nil
}

func validateRange(name string, lo, hi int) error {
	if lo < 0 || hi > 100 || lo > hi {
		return fmt.Errorf("%s range must satisfy 0 <= min <= max <= 100, got %d..%d", name, lo, hi)
	}
	return nil
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values fall back to info.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
