package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Settings holds everything read from the environment. godotenv is loaded in
// main before Load runs, so plain os.Getenv is enough here.
type Settings struct {
	AppName  string
	HTTPAddr string

	DatabaseDSN string

	GeminiModel string
	LLMTimeout  time.Duration

	// DuplicateLookbackDays bounds how far back the duplicate detector
	// compares candidates against committed expenses.
	DuplicateLookbackDays int

	// StagingTTL is how long an open batch may sit idle before the janitor
	// evicts it.
	StagingTTL      time.Duration
	JanitorInterval time.Duration

	AllowedOrigins []string
}

func Load() Settings {
	return Settings{
		AppName:               getEnv("APP_NAME", "ai-bookkeeper"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:           getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=bookkeeper port=5432 sslmode=disable"),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTimeout:            time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		DuplicateLookbackDays: getEnvInt("DUPLICATE_LOOKBACK_DAYS", 90),
		StagingTTL:            time.Duration(getEnvInt("STAGING_TTL_MINUTES", 1440)) * time.Minute,
		JanitorInterval:       time.Duration(getEnvInt("JANITOR_INTERVAL_MINUTES", 30)) * time.Minute,
		AllowedOrigins:        strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
	}
}

// InitDB opens the postgres connection. Fatal on failure: the service cannot
// do anything useful without its database.
func InitDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
