// Package config loads the application configuration from the environment.
// The Config struct is built once in main and passed by reference to every
// component that needs it; there is no ambient global lookup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-sourced setting.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// APIPrefix is prepended to every route, e.g. "/api/v1".
	APIPrefix string
	// SecretKey signs bearer tokens.
	SecretKey string
	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration
	// AllowedOrigins is the CORS origin allowlist.
	AllowedOrigins []string
	// DatabaseDSN is the Postgres connection string.
	DatabaseDSN string
	// FirstSuperuserEmail and FirstSuperuserPassword seed the default
	// superuser created at startup if absent.
	FirstSuperuserEmail    string
	FirstSuperuserPassword string
	// UploadDir is the root directory for stored uploads.
	UploadDir string
	// MaxUploadBytes caps the accepted upload size.
	MaxUploadBytes int64
	// AllowedImageExts and AllowedVideoExts are lowercase extensions
	// (without dot) accepted per media type.
	AllowedImageExts []string
	AllowedVideoExts []string
}

// Load reads the configuration from environment variables, applying
// development defaults for anything unset.
func Load() *Config {
	ttlMinutes := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*8)
	maxMB := getEnvInt("MAX_FILE_SIZE_MB", 50)

	return &Config{
		Addr:                   getEnv("SERVER_ADDRESS", ":8080"),
		APIPrefix:              getEnv("API_PREFIX", "/api/v1"),
		SecretKey:              getEnv("SECRET_KEY", "change-this-secret-key"),
		TokenTTL:               time.Duration(ttlMinutes) * time.Minute,
		AllowedOrigins:         parseList(getEnv("BACKEND_CORS_ORIGINS", "http://localhost:3000,http://localhost:8000")),
		DatabaseDSN:            getEnv("DATABASE_DSN", "postgres://localhost:5432/deeptrace?sslmode=disable"),
		FirstSuperuserEmail:    getEnv("FIRST_SUPERUSER", "admin@deeptrace.local"),
		FirstSuperuserPassword: getEnv("FIRST_SUPERUSER_PASSWORD", "changethis"),
		UploadDir:              getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:         int64(maxMB) * 1024 * 1024,
		AllowedImageExts:       parseList(getEnv("ALLOWED_IMAGE_EXTENSIONS", "jpg,jpeg,png,webp")),
		AllowedVideoExts:       parseList(getEnv("ALLOWED_VIDEO_EXTENSIONS", "mp4,mov,avi,webm")),
	}
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
