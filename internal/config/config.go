package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	RPCURL                string
	RPCCommitment         string
	RPCRetryMax           int
	RPCRetryBaseDelay     time.Duration
	RPCConcurrency        int
	DatabaseURL           string
	HTTPPort              string
	AdminAPIKey           string
	SnapshotSchedule      string
	PositionsFile         string
	ExportXLSXPath        string
	GoogleSheetsID        string
	GoogleCredentialsJSON string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		RPCURL:                envOrDefault("RPC_URL", "https://api.mainnet-beta.solana.com"),
		RPCCommitment:         envOrDefault("RPC_COMMITMENT", "confirmed"),
		RPCRetryMax:           envOrDefaultInt("RPC_RETRY_MAX", 5),
		RPCRetryBaseDelay:     envOrDefaultDuration("RPC_RETRY_BASE_DELAY", 2*time.Second),
		RPCConcurrency:        envOrDefaultInt("RPC_CONCURRENCY", 3),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:           os.Getenv("ADMIN_API_KEY"),
		SnapshotSchedule:      envOrDefault("SNAPSHOT_SCHEDULE", "@every 1h"),
		PositionsFile:         envOrDefault("POSITIONS_FILE", "positions.yaml"),
		ExportXLSXPath:        os.Getenv("EXPORT_XLSX_PATH"),
		GoogleSheetsID:        os.Getenv("GOOGLE_SHEETS_ID"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
	}
}

// RequireDatabaseURL warns when DATABASE_URL is unset and reports whether it is present.
func (c Config) RequireDatabaseURL() bool {
	if c.DatabaseURL == "" {
		slog.Warn("required env var not set", "key", "DATABASE_URL")
		return false
	}
	return true
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
