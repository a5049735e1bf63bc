package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// Load .env before anything reads the environment.
	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	DBDriver   string
	DBURL      string
	DBUsername string
	DBPassword string

	// JWTSecret enables bearer auth on write endpoints when set.
	JWTSecret         string
	JWTTTL            time.Duration
	AdminPasswordHash string

	LogLevel  log.Level
	LogFormat string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBDriver:          os.Getenv("DB_DRIVER"),
		DBURL:             getEnv("DB_URL", "data/novels.db"),
		DBUsername:        os.Getenv("DB_USERNAME"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	hours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil || hours <= 0 {
		return nil, fmt.Errorf("JWT_TTL_HOURS must be a positive integer, got %q", os.Getenv("JWT_TTL_HOURS"))
	}
	cfg.JWTTTL = time.Duration(hours) * time.Hour

	cfg.LogLevel, err = log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.AdminPasswordHash != "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH requires JWT_SECRET")
	}

	return cfg, nil
}

// AuthEnabled reports whether write endpoints require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// ConfigureLogger applies the level and format to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
