// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey  string
	DatabaseURL   string
	HTTPPort      string
	LogLevel      string
	JWTSecret     string
	UploadsDir    string
	PublicBaseURL string
}

// Load reads a .env file if present, then the environment, and validates the
// result. The returned Config is passed into constructors by value; there is
// no package-level instance.
func Load() (Config, error) {
	_ = godotenv.Load() // optional; environment variables win anyway

	cfg := Config{
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:   getEnv("DATABASE_URL", "smartscribe.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		UploadsDir:    getEnv("UPLOADS_DIR", "uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.GeminiAPIKey, validation.Required.Error("GEMINI_API_KEY is required")),
		validation.Field(&c.JWTSecret, validation.Required.Error("JWT_SECRET is required")),
		validation.Field(&c.HTTPPort, validation.Required, is.Port),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.UploadsDir, validation.Required),
		validation.Field(&c.PublicBaseURL, validation.Required, is.URL),
	)
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
