package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "DATABASE_URL", "REDIS_URL", "PORT", "LOG_LEVEL", "LOG_FORMAT",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "CORS_ALLOWED_ORIGINS", "ETF_CATALOG_PATH", "ALLOCATION_CACHE_TTL_SECS",
	"MCP_TRANSPORT", "MCP_HTTP_ENABLED", "MCP_HTTP_BIND", "MCP_HTTP_PORT", "MCP_AUTH_TOKEN",
	"MCP_REQUEST_TIMEOUT_SECS", "MCP_RATE_LIMIT_PER_MIN", "OPENAI_API_KEY", "OPENAI_MODEL",
	"ADVISOR_MAX_HISTORY", "CHAT_RETENTION_DAYS", "CHAT_RETENTION_CRON",
	"SSH_BIND", "SSH_PORT", "SSH_HOST_KEY_PATH",
}

// loadWith runs Load against exactly the given environment.
func loadWith(t *testing.T, env map[string]string) *Config {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, env[key])
	}
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadWith(t, nil)

	want := &Config{
		RedisURL:              "localhost:6379",
		Port:                  "8080",
		LogLevel:              "info",
		LogFormat:             "json",
		AllocationCacheTTL:    3600,
		MCPTransport:          "stdio",
		MCPHTTPBind:           "127.0.0.1",
		MCPHTTPPort:           8090,
		MCPRequestTimeoutSecs: 5,
		MCPRateLimitPerMin:    60,
		OpenAIModel:           "gpt-4o-mini",
		AdvisorMaxHistory:     20,
		ChatRetentionDays:     90,
		ChatRetentionCron:     "15 3 * * *",
		SSHBind:               "0.0.0.0",
		SSHPort:               2222,
		SSHHostKeyPath:        ".ssh/id_ed25519",
	}
	assert.Equal(t, want, cfg)
}

func TestLoadOverrides(t *testing.T) {
	cfg := loadWith(t, map[string]string{
		"TELEGRAM_BOT_TOKEN":          "tg",
		"DATABASE_URL":                "postgres://advisor@db/advisor",
		"REDIS_URL":                   "cache:6379",
		"PORT":                        "9000",
		"LOG_LEVEL":                   "DEBUG",
		"LOG_FORMAT":                  "Console",
		"OTEL_EXPORTER_OTLP_ENDPOINT": " collector:4317 ",
		"CORS_ALLOWED_ORIGINS":        "https://a.example, https://b.example,,https://a.example",
		"ETF_CATALOG_PATH":            "/etc/advisor/etfs.yaml",
		"ALLOCATION_CACHE_TTL_SECS":   "120",
		"MCP_TRANSPORT":               "HTTP",
		"MCP_HTTP_ENABLED":            "1",
		"MCP_HTTP_BIND":               "0.0.0.0",
		"MCP_HTTP_PORT":               "9191",
		"MCP_AUTH_TOKEN":              "one,two",
		"MCP_REQUEST_TIMEOUT_SECS":    "9",
		"MCP_RATE_LIMIT_PER_MIN":      "75",
		"OPENAI_API_KEY":              "sk-test",
		"OPENAI_MODEL":                "gpt-4.1",
		"ADVISOR_MAX_HISTORY":         "8",
		"CHAT_RETENTION_DAYS":         "30",
		"CHAT_RETENTION_CRON":         "0 4 * * 1",
		"SSH_BIND":                    "127.0.0.1",
		"SSH_PORT":                    "2022",
		"SSH_HOST_KEY_PATH":           "/keys/host",
	})

	assert.Equal(t, "tg", cfg.TelegramBotToken)
	assert.Equal(t, "postgres://advisor@db/advisor", cfg.DatabaseURL)
	assert.Equal(t, "cache:6379", cfg.RedisURL)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "/etc/advisor/etfs.yaml", cfg.ETFCatalogPath)
	assert.Equal(t, 120, cfg.AllocationCacheTTL)

	assert.Equal(t, "http", cfg.MCPTransport)
	assert.True(t, cfg.MCPHTTPEnabled)
	assert.Equal(t, "0.0.0.0", cfg.MCPHTTPBind)
	assert.Equal(t, 9191, cfg.MCPHTTPPort)
	assert.Equal(t, "one,two", cfg.MCPAuthToken)
	assert.Equal(t, 9, cfg.MCPRequestTimeoutSecs)
	assert.Equal(t, 75, cfg.MCPRateLimitPerMin)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4.1", cfg.OpenAIModel)
	assert.Equal(t, 8, cfg.AdvisorMaxHistory)
	assert.Equal(t, 30, cfg.ChatRetentionDays)
	assert.Equal(t, "0 4 * * 1", cfg.ChatRetentionCron)

	assert.Equal(t, "127.0.0.1", cfg.SSHBind)
	assert.Equal(t, 2022, cfg.SSHPort)
	assert.Equal(t, "/keys/host", cfg.SSHHostKeyPath)
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	tests := []struct {
		key, value string
		got        func(*Config) any
		want       any
	}{
		{"LOG_FORMAT", "xml", func(c *Config) any { return c.LogFormat }, "json"},
		{"MCP_TRANSPORT", "grpc", func(c *Config) any { return c.MCPTransport }, "stdio"},
		{"MCP_HTTP_ENABLED", "yes please", func(c *Config) any { return c.MCPHTTPEnabled }, false},
		{"MCP_HTTP_PORT", "bad", func(c *Config) any { return c.MCPHTTPPort }, 8090},
		{"MCP_REQUEST_TIMEOUT_SECS", "-1", func(c *Config) any { return c.MCPRequestTimeoutSecs }, 5},
		{"MCP_RATE_LIMIT_PER_MIN", "0", func(c *Config) any { return c.MCPRateLimitPerMin }, 60},
		{"ALLOCATION_CACHE_TTL_SECS", "soon", func(c *Config) any { return c.AllocationCacheTTL }, 3600},
		{"ADVISOR_MAX_HISTORY", "many", func(c *Config) any { return c.AdvisorMaxHistory }, 20},
		{"CHAT_RETENTION_DAYS", "1.5", func(c *Config) any { return c.ChatRetentionDays }, 90},
		{"CHAT_RETENTION_CRON", "every day", func(c *Config) any { return c.ChatRetentionCron }, "15 3 * * *"},
		{"SSH_PORT", "ssh", func(c *Config) any { return c.SSHPort }, 2222},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := loadWith(t, map[string]string{tt.key: tt.value})
			assert.Equal(t, tt.want, tt.got(cfg))
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Nil(t, parseList(" , ,"))
	assert.Equal(t, []string{"a", "b"}, parseList("a,b,a, b "))
}
