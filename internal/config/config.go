package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	RunModePolling = "polling"
	RunModeWebhook = "webhook"
)

const defaultBroadcastWorkers = 8

// Config is read once from the environment at startup. A .env file, if
// present, is loaded by godotenv/autoload in main.
type Config struct {
	BotToken string
	AdminIDs string
	DBPath   string

	RunMode    string
	WebhookURL string
	ListenAddr string

	BroadcastWorkers int

	LogLevel  string
	LogFormat string
}

// Load reads and validates configuration. A missing token, or a missing
// webhook URL in webhook mode, is an error the caller treats as fatal.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:         os.Getenv("BOT_TOKEN"),
		AdminIDs:         os.Getenv("ADMIN_IDS"),
		DBPath:           getEnv("DB_PATH", "broadcast.db"),
		RunMode:          strings.ToLower(strings.TrimSpace(getEnv("RUN_MODE", RunModePolling))),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		BroadcastWorkers: defaultBroadcastWorkers,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}

	if workersStr := os.Getenv("BROADCAST_WORKERS"); workersStr != "" {
		workers, err := strconv.Atoi(workersStr)
		if err != nil || workers < 1 {
			return nil, fmt.Errorf("invalid BROADCAST_WORKERS %q", workersStr)
		}
		cfg.BroadcastWorkers = workers
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}

	switch cfg.RunMode {
	case RunModePolling:
	case RunModeWebhook:
		if strings.TrimSpace(cfg.WebhookURL) == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when RUN_MODE is %q", RunModeWebhook)
		}
	default:
		return nil, fmt.Errorf("invalid RUN_MODE %q; allowed: %s, %s", cfg.RunMode, RunModePolling, RunModeWebhook)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
