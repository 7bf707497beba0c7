package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv               string
	Port                 string
	DatabaseURL          string
	JWTSecret            string
	StoragePath          string
	StorageBaseURL       string
	CORSAllowedOrigins   []string
	GeminiAPIKey         string
	GeminiBaseURL        string
	GeminiVisionModel    string
	GeminiImageModel     string
	RenderBackend        string
	RedisAddr            string
	RedisPassword        string
	InsightCacheTTL      time.Duration
	IntentVocabularyPath string
	MaxRenderAttempts    int
	WorkerPollInterval   time.Duration
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	RateLimitPerMin      int
}

const (
	RenderBackendREST = "rest"
	RenderBackendSDK  = "sdk"
)

// LoadConfig loads configuration for the API and worker. DATABASE_URL and
// JWT_SECRET are required.
func LoadConfig() (*Config, error) {
	cfg, err := LoadLocalConfig()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// LoadLocalConfig loads configuration without requiring a database, for local
// tools.
func LoadLocalConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 port,
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		StoragePath:          getEnv("STORAGE_PATH", "./data"),
		StorageBaseURL:       getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiVisionModel:    getEnv("GEMINI_VISION_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:     getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		RenderBackend:        strings.ToLower(getEnv("RENDER_BACKEND", RenderBackendREST)),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		InsightCacheTTL:      time.Minute * time.Duration(getEnvInt("INSIGHT_CACHE_TTL_MINUTES", 24*60)),
		IntentVocabularyPath: os.Getenv("INTENT_VOCABULARY_PATH"),
		MaxRenderAttempts:    getEnvInt("MAX_RENDER_ATTEMPTS", 3),
		WorkerPollInterval:   time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 2)),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.RenderBackend {
	case RenderBackendREST, RenderBackendSDK:
	default:
		return nil, fmt.Errorf("RENDER_BACKEND must be %q or %q", RenderBackendREST, RenderBackendSDK)
	}
	if cfg.MaxRenderAttempts < 1 || cfg.MaxRenderAttempts > 3 {
		return nil, fmt.Errorf("MAX_RENDER_ATTEMPTS must be between 1 and 3")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
