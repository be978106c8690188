package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Watch   WatchConfig
	App     AppConfig
}

type ServerConfig struct {
	Port        int
	CORSOrigins []string
	StaticDir   string
	// ExportRate is contract exports allowed per second; 0 disables the limit.
	ExportRate  float64
	ExportBurst int
}

// StorageConfig selects the project store. An empty DBPath keeps the
// portfolio in memory.
type StorageConfig struct {
	DBPath    string
	ExportDir string
}

// WatchConfig controls the background deadline watcher.
type WatchConfig struct {
	Enabled  bool
	Schedule string
	Window   int
}

type AppConfig struct {
	Environment  string
	SeedScenario string
}

var defaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// Load reads .env (if present) and the environment. Flags applied by the
// caller take precedence over both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("PORT", 8080),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", defaultCORSOrigins),
			StaticDir:   getEnv("STATIC_DIR", "./web/dist"),
			ExportRate:  getEnvAsFloat("EXPORT_RATE_LIMIT", 1),
			ExportBurst: getEnvAsInt("EXPORT_BURST", 5),
		},
		Storage: StorageConfig{
			DBPath:    getEnv("DB_PATH", ""),
			ExportDir: getEnv("EXPORT_DIR", "exports"),
		},
		Watch: WatchConfig{
			Enabled:  getEnvAsBool("WATCH_ENABLED", true),
			Schedule: getEnv("WATCH_SCHEDULE", "@every 1h"),
			Window:   getEnvAsInt("WATCH_WINDOW_DAYS", 60),
		},
		App: AppConfig{
			Environment:  getEnv("APP_ENV", "development"),
			SeedScenario: getEnvAllowEmpty("SEED_SCENARIO", "project-sunrise"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Storage.ExportDir == "" {
		return fmt.Errorf("EXPORT_DIR is required")
	}

	if c.Server.ExportRate < 0 {
		return fmt.Errorf("EXPORT_RATE_LIMIT must not be negative, got %v", c.Server.ExportRate)
	}

	if c.Server.ExportRate > 0 && c.Server.ExportBurst < 1 {
		return fmt.Errorf("EXPORT_BURST must be at least 1, got %d", c.Server.ExportBurst)
	}

	if c.Watch.Enabled && c.Watch.Schedule == "" {
		return fmt.Errorf("WATCH_SCHEDULE is required when the watcher is enabled")
	}

	if c.Watch.Window < 0 {
		return fmt.Errorf("WATCH_WINDOW_DAYS must not be negative, got %d", c.Watch.Window)
	}

	return nil
}

// InMemory reports whether projects live only for the process lifetime.
func (c *Config) InMemory() bool {
	return c.Storage.DBPath == "" || c.Storage.DBPath == ":memory:"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes unset (default) from set-but-empty
// (explicitly nothing).
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
