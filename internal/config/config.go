package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv       string
	Port          string
	JWTSecret     string
	PublicBaseURL string
	Log           LogConfig
	Database      DatabaseConfig
	AI            AIConfig
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	Alter      bool
	SQLitePath string
}

// AIConfig holds the settings of the text-generation endpoint
type AIConfig struct {
	Provider string // rest or sdk
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ai, err := loadAI()
	if err != nil {
		return nil, err
	}

	db := loadDatabase()
	if db.Driver != "postgres" && db.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", db.Driver)
	}

	return &Config{
		NodeEnv:       getEnv("NODE_ENV", "development"),
		Port:          getEnv("PORT", "3210"),
		JWTSecret:     jwtSecret,
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3210"), "/"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: db,
		AI:       ai,
	}, nil
}

// LoadDatabase returns only the database section. Used by tooling that
// never talks to the AI endpoint.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return loadDatabase()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		Host:       getEnv("PG_HOST", "localhost"),
		Port:       getEnv("PG_PORT", "5432"),
		Username:   getEnv("PG_USERNAME", "postgres"),
		Password:   os.Getenv("PG_PASSWORD"),
		Database:   getEnv("PG_DATABASE", "eckassets"),
		Alter:      getEnv("DB_ALTER", "false") == "true",
		SQLitePath: getEnv("SQLITE_PATH", "eckassets.db"),
	}
}

// The endpoint key has no default: the server refuses to start without it.
func loadAI() (AIConfig, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return AIConfig{}, fmt.Errorf("GEMINI_API_KEY is required")
	}

	timeout := 60 * time.Second
	if raw := os.Getenv("AI_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return AIConfig{}, fmt.Errorf("invalid AI_TIMEOUT %q", raw)
		}
		timeout = d
	}

	provider := strings.ToLower(getEnv("AI_PROVIDER", "rest"))
	if provider != "rest" && provider != "sdk" {
		return AIConfig{}, fmt.Errorf("unsupported AI_PROVIDER %q", provider)
	}

	return AIConfig{
		Provider: provider,
		APIKey:   apiKey,
		Model:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		BaseURL:  getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com"),
		Timeout:  timeout,
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
