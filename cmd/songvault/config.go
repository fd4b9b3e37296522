package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL   string
	Addr          string
	BaseURL       string
	AllowedOrigin string
	LogLevel      string
	LogFormat     string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	port := envOrDefault("PORT", "8080")

	return Config{
		DatabaseURL:   dsn,
		Addr:          fmt.Sprintf(":%s", port),
		BaseURL:       envOrDefault("BASE_URL", "http://localhost:"+port),
		AllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogFormat:     envOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
