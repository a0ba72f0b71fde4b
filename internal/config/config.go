package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	NatsURL         string
	NatsToken       string
	DatabaseURL     string
	LogLevel        string
	AnthropicAPIKey string
	AnthropicModel  string
	SlackBotToken   string
	SlackChannel    string
	TenantID        string

	// Report generation.
	ReportSchedule string
	ReportLookback time.Duration
	AITimeout      time.Duration
	QualifyScore   int
	MaxSuggestions int
}

func Load() Config {
	return Config{
		Port:            envInt("HIVE_PORT", 8760),
		NatsURL:         envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:       envStr("NATS_TOKEN", ""),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("HIVE_MODEL", "claude-sonnet-4-20250514"),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:    envStr("SLACK_REPORT_CHANNEL", ""),
		TenantID:        envStr("HIVE_TENANT_ID", "default"),
		ReportSchedule:  envStr("HIVE_REPORT_SCHEDULE", "0 0 9 * * *"),
		ReportLookback:  envDuration("HIVE_REPORT_LOOKBACK", 24*time.Hour),
		AITimeout:       envDuration("HIVE_AI_TIMEOUT", 30*time.Second),
		QualifyScore:    envInt("HIVE_QUALIFY_SCORE", 70),
		MaxSuggestions:  envInt("HIVE_MAX_SUGGESTIONS", 3),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("90s", "24h").
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
