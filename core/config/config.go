package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
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
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret          string
	AccessTokenMinutes int
}

type SchedulingConfig struct {
	DefaultSessionMinutes int
}

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Scheduling  SchedulingConfig
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads .env (if present) and the environment into the global config.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "review_scheduler")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ACCESS_TOKEN_MINUTES", 60)
	v.SetDefault("SCHED_DEFAULT_SESSION_MINUTES", 30)

	cfg := &Config{
		Environment: v.GetString("ENV"),
		Server: ServerConfig{
			Host:     v.GetString("SERVER_HOST"),
			Port:     v.GetInt("SERVER_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret:          v.GetString("JWT_SECRET"),
			AccessTokenMinutes: v.GetInt("ACCESS_TOKEN_MINUTES"),
		},
		Scheduling: SchedulingConfig{
			DefaultSessionMinutes: v.GetInt("SCHED_DEFAULT_SESSION_MINUTES"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the global config. Panics when called before Load.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

// GetSafe returns the global config and whether it has been initialized.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set overrides the global config. Intended for tests.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
