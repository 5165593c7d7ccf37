package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, read once at startup.
type Config struct {
	ServiceName string
	Env         string
	Port        string
	DBDSN       string
	AutoMigrate bool

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	UploadBase    string
	AdminPassword string
	LogLevel      string
}

// LoadConfig loads configuration from the environment, with a local .env
// file as optional overrides for development.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		// .env is optional; plain env vars are the production path
		fmt.Println("no .env file found, using environment variables")
	}
	return &Config{
		ServiceName:     "udhaar",
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8081"),
		DBDSN:           getEnv("DB_DSN", ""),
		AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		JWTSecret:       getEnv("JWT_SECRET", "dev-insecure-secret-change"),
		AccessTokenTTL:  getEnvAsDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getEnvAsDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		UploadBase:      getEnv("UPLOAD_BASE", "uploads"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
