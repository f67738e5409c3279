// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	Port        string
	BaseURL     string
	Environment string
	LogLevel    string

	DBDriver    string // "sqlite" or "postgres"
	SQLiteFile  string
	DatabaseURL string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ContextBackend string // "memory" or "redis"

	TelegramToken string

	LLMProvider   string // "gemini" or "openai"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	LLMTimeout    time.Duration
	AssistantName string
	Language      string

	IgnoredGroupIDs  []string
	IgnoredUsernames []string
	Keywords         []string

	UploadDir      string
	MaxUploadBytes int64

	JWTSecret         string
	DashboardPassword string
	AllowReReply      bool

	BacklogCron string
	BacklogAge  time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
// TELEGRAM_BOT_TOKEN is not validated here because the admin CLI does not need it.
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.Port = getEnv("PORT", "3000")
	cfg.BaseURL = getEnv("BASE_URL", "http://localhost:"+cfg.Port)
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", "sqlite"))
	cfg.SQLiteFile = getEnv("SQLITE_FILE", "complaints.db")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required for DB_DRIVER=postgres)")
		}
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want sqlite or postgres", cfg.DBDriver)
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	cfg.ContextBackend = strings.ToLower(getEnv("CONTEXT_BACKEND", "memory"))
	switch cfg.ContextBackend {
	case "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is not set (required for CONTEXT_BACKEND=redis)")
		}
	default:
		return nil, fmt.Errorf("invalid CONTEXT_BACKEND %q: want memory or redis", cfg.ContextBackend)
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	cfg.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", DefaultGeminiModel)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", DefaultOpenAIModel)
	if cfg.LLMProvider != "gemini" && cfg.LLMProvider != "openai" {
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q: want gemini or openai", cfg.LLMProvider)
	}
	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", DefaultLLMTimeout); err != nil {
		return nil, err
	}
	cfg.AssistantName = getEnv("ASSISTANT_NAME", DefaultAssistantName)
	cfg.Language = strings.ToLower(getEnv("LANGUAGE", "id"))

	cfg.IgnoredGroupIDs = splitList(os.Getenv("IGNORED_GROUP_IDS"))
	cfg.IgnoredUsernames = DefaultIgnoredUsernames
	if v := splitList(os.Getenv("IGNORED_USERNAMES")); len(v) > 0 {
		cfg.IgnoredUsernames = v
	}
	cfg.Keywords = DefaultKeywords
	if v := splitList(os.Getenv("TRIAGE_KEYWORDS")); len(v) > 0 {
		cfg.Keywords = v
	}

	cfg.UploadDir = getEnv("UPLOAD_DIR", "uploads")
	maxMB, err := getInt("MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.DashboardPassword = os.Getenv("DASHBOARD_PASSWORD")
	if cfg.JWTSecret != "" && cfg.DashboardPassword == "" {
		return nil, fmt.Errorf("DASHBOARD_PASSWORD is not set (required when JWT_SECRET is set)")
	}
	if cfg.AllowReReply, err = getBool("ALLOW_REREPLY", false); err != nil {
		return nil, err
	}

	cfg.BacklogCron = getEnv("BACKLOG_CRON", "*/15 * * * *")
	if cfg.BacklogAge, err = getDuration("BACKLOG_AGE", time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LLMAPIKey returns the key of the selected provider.
func (c *AppConfig) LLMAPIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
