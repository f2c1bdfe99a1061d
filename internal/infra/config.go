package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	GeoIPDBPath string

	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string
	GeminiBaseURL    string

	MeshyAPIKey  string
	MeshyBaseURL string

	DirectusURL   string
	DirectusToken string

	DesignsDir       string
	AssetProxyPrefix string
	DefaultLocale    string
	AllowedOrigins   []string

	MeshMaxPollAttempts  int
	MeshInitialPollDelay time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. External credentials are intentionally optional:
// a missing key disables the feature at the HTTP boundary instead of
// preventing startup.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		MeshyAPIKey:  os.Getenv("MESHY_API_KEY"),
		MeshyBaseURL: getEnv("MESHY_BASE_URL", "https://api.meshy.ai/openapi/v1"),

		DirectusURL:   strings.TrimRight(os.Getenv("DIRECTUS_URL"), "/"),
		DirectusToken: os.Getenv("DIRECTUS_TOKEN"),

		DesignsDir:       os.Getenv("DESIGNS_DIR"),
		AssetProxyPrefix: getEnv("ASSET_PROXY_ALLOW_PREFIX", "https://assets.meshy.ai/"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "sv"),
		AllowedOrigins:   splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),

		MeshMaxPollAttempts:  getEnvInt("MESH_MAX_POLL_ATTEMPTS", 60),
		MeshInitialPollDelay: time.Millisecond * time.Duration(getEnvInt("MESH_INITIAL_POLL_DELAY_MS", 5000)),

		// Write timeout has to cover the full 2-3 minute generation
		// pipeline when the caller asks to wait for the 3D conversion.
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 420)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
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

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
