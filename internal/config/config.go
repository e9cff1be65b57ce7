package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// APIBaseURL is the root of the monitoring backend, without trailing slash.
	APIBaseURL string `env:"IW_API_URL, default=http://localhost:4000"`

	// DashboardURL is the hosted web dashboard opened by `insightwatch open`.
	DashboardURL string `env:"IW_DASHBOARD_URL, default=http://localhost:5173"`

	// RequestTimeout bounds every backend call.
	RequestTimeout time.Duration `env:"IW_REQUEST_TIMEOUT, default=30s"`

	// DataPath is where the session token, selection file and logs live.
	DataPath string `env:"IW_DATA_PATH"`

	// FeedLimit is the fixed page size for logs/screenshots feeds.
	FeedLimit int `env:"IW_FEED_LIMIT, default=100"`

	// TopLimit caps the top-apps / top-categories analytics queries.
	TopLimit int `env:"IW_TOP_LIMIT, default=10"`
}

// LogDir returns the log directory inside the data path.
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataPath, "logs")
}

// TokenPath is the single well-known slot the session credential persists in.
func (c *AppConfig) TokenPath() string {
	return filepath.Join(c.DataPath, "session.token")
}

// SelectionPath holds the selected subject between CLI invocations.
func (c *AppConfig) SelectionPath() string {
	return filepath.Join(c.DataPath, "selection.json")
}

// Load loads the configuration from .env files and environment variables.
func Load(ctx context.Context) (*AppConfig, error) {
	// 1. Try to load from the executable's directory first
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Decode environment into the typed config
	var cfg AppConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}

	// 4. Resolve data path and ensure it exists
	if cfg.DataPath == "" {
		if exeDir != "" {
			cfg.DataPath = exeDir
		} else {
			cfg.DataPath = "."
		}
	}
	if err := os.MkdirAll(cfg.DataPath, 0755); err != nil {
		log.Warn().Err(err).Str("path", cfg.DataPath).Msg("Failed to create data directory")
	}

	return &cfg, nil
}
