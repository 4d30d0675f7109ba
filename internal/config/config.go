package config

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL  string
	RedisURL     string
	Port         string
	LogLevel     string
	LogFormat    string
	OTLPEndpoint string

	CORSAllowedOrigins []string
	ETFCatalogPath     string
	AllocationCacheTTL int

	TelegramBotToken string

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	OpenAIAPIKey      string
	OpenAIModel       string
	AdvisorMaxHistory int

	ChatRetentionDays int
	ChatRetentionCron string

	SSHBind        string
	SSHPort        int
	SSHHostKeyPath string
}

const defaultRetentionCron = "15 3 * * *"

// Load reads the process environment. Missing or malformed values fall back
// to defaults with a warning; Load never fails.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:       stringEnv("REDIS_URL", "localhost:6379"),
		Port:           stringEnv("PORT", "8080"),
		LogLevel:       strings.ToLower(stringEnv("LOG_LEVEL", "info")),
		LogFormat:      enumEnv("LOG_FORMAT", "json", "console"),
		OTLPEndpoint:   strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		ETFCatalogPath: strings.TrimSpace(os.Getenv("ETF_CATALOG_PATH")),

		CORSAllowedOrigins: parseList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AllocationCacheTTL: positiveInt("ALLOCATION_CACHE_TTL_SECS", 3600),

		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),

		MCPTransport:          enumEnv("MCP_TRANSPORT", "stdio", "http"),
		MCPHTTPEnabled:        boolEnv("MCP_HTTP_ENABLED"),
		MCPHTTPBind:           stringEnv("MCP_HTTP_BIND", "127.0.0.1"),
		MCPHTTPPort:           positiveInt("MCP_HTTP_PORT", 8090),
		MCPAuthToken:          os.Getenv("MCP_AUTH_TOKEN"),
		MCPRequestTimeoutSecs: positiveInt("MCP_REQUEST_TIMEOUT_SECS", 5),
		MCPRateLimitPerMin:    positiveInt("MCP_RATE_LIMIT_PER_MIN", 60),

		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:       stringEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AdvisorMaxHistory: positiveInt("ADVISOR_MAX_HISTORY", 20),

		ChatRetentionDays: positiveInt("CHAT_RETENTION_DAYS", 90),
		ChatRetentionCron: stringEnv("CHAT_RETENTION_CRON", defaultRetentionCron),

		SSHBind:        stringEnv("SSH_BIND", "0.0.0.0"),
		SSHPort:        positiveInt("SSH_PORT", 2222),
		SSHHostKeyPath: stringEnv("SSH_HOST_KEY_PATH", ".ssh/id_ed25519"),
	}

	if _, err := cron.ParseStandard(cfg.ChatRetentionCron); err != nil {
		log.Warn().Err(err).Str("value", cfg.ChatRetentionCron).Msg("invalid CHAT_RETENTION_CRON, using default")
		cfg.ChatRetentionCron = defaultRetentionCron
	}

	for _, unset := range []struct {
		missing bool
		msg     string
	}{
		{cfg.DatabaseURL == "", "DATABASE_URL not set, persistence disabled"},
		{cfg.TelegramBotToken == "", "TELEGRAM_BOT_TOKEN not set, telegram bot disabled"},
		{cfg.OpenAIAPIKey == "", "OPENAI_API_KEY not set, advisor disabled"},
	} {
		if unset.missing {
			log.Warn().Msg(unset.msg)
		}
	}
	return cfg
}

// enumEnv returns the lower-cased value of key when it is fallback or one of
// allowed, and fallback otherwise.
func enumEnv(key, fallback string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch {
	case v == "":
		return fallback
	case v == fallback || slices.Contains(allowed, v):
		return v
	}
	log.Warn().Str("key", key).Str("value", v).Str("default", fallback).Msg("unsupported setting, using default")
	return fallback
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", fallback).Msg("invalid integer setting, using default")
		return fallback
	}
	return n
}

// parseList splits a comma-separated value, dropping blanks and repeats.
func parseList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}
