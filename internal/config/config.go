package config

import (
	"os"
	"strconv"
	"strings"

	"highlight-saver/internal/domain"
)

var defaultAllowedOrigins = []string{
	"chrome-extension://*",
	"moz-extension://*",
	"http://localhost:5173",
	"http://localhost:3000",
}

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort            string
	LogLevel              string
	StoreDriver           string
	BoltPath              string
	SQLitePath            string
	SupabaseURL           string
	SupabaseKey           string
	SupabaseTable         string
	GeminiBaseURL         string
	GeminiModel           string
	SummaryTimeoutSeconds int
	ExtensionToken        string
	AllowedOrigins        []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// PaaS hosts provide the listening port via PORT; SERVER_PORT is kept for local runs.
		ServerPort:            getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		StoreDriver:           strings.ToLower(getEnvOrDefault("STORE_DRIVER", "bolt")),
		BoltPath:              getEnvOrDefault("BOLT_PATH", "./data/highlights.db"),
		SQLitePath:            getEnvOrDefault("SQLITE_PATH", "./data/highlights.sqlite"),
		SupabaseURL:           getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:           getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseTable:         getEnvOrDefault("SUPABASE_TABLE", "extension_storage"),
		GeminiBaseURL:         strings.TrimRight(getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash-lite"),
		SummaryTimeoutSeconds: getEnvIntOrDefault("SUMMARY_TIMEOUT", 30),
		ExtensionToken:        getEnvOrDefault("EXTENSION_TOKEN", ""),
		AllowedOrigins:        getEnvListOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigins),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetStoreDriver returns the key-value backend name: bolt, sqlite, supabase or memory
func (c *AppConfig) GetStoreDriver() string {
	return c.StoreDriver
}

func (c *AppConfig) GetBoltPath() string {
	return c.BoltPath
}

func (c *AppConfig) GetSQLitePath() string {
	return c.SQLitePath
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseTable returns the table holding key/value rows
func (c *AppConfig) GetSupabaseTable() string {
	return c.SupabaseTable
}

func (c *AppConfig) GetGeminiBaseURL() string {
	return c.GeminiBaseURL
}

func (c *AppConfig) GetGeminiModel() string {
	return c.GeminiModel
}

// GetSummaryTimeoutSeconds bounds a single summarization request
func (c *AppConfig) GetSummaryTimeoutSeconds() int {
	return c.SummaryTimeoutSeconds
}

// GetExtensionToken returns the shared secret for the messaging API; empty disables the check
func (c *AppConfig) GetExtensionToken() string {
	return c.ExtensionToken
}

func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
