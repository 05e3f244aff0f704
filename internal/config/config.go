package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds server settings resolved from the environment. Command-line
// flags override these values in cmd.
type Config struct {
	DBPath         string
	Addr           string
	AdminUser      string
	LogPath        string
	StartingPoints int
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using environment variables only")
	}

	return &Config{
		DBPath:         getEnv("SWAPWEAR_DB", "swapwear.sqlite3"),
		Addr:           getEnv("SWAPWEAR_ADDR", ":8080"),
		AdminUser:      getEnv("SWAPWEAR_ADMIN_USER", "admin"),
		LogPath:        getEnv("SWAPWEAR_LOG", ""),
		StartingPoints: getEnvInt("SWAPWEAR_STARTING_POINTS", 0),
	}
}

// getEnv returns an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring non-integer environment variable", "key", key, "value", value)
		return defaultValue
	}
	return n
}
