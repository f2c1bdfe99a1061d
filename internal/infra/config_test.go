package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MESHY_BASE_URL", "")
	t.Setenv("ASSET_PROXY_ALLOW_PREFIX", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q", cfg.Port)
	}
	if cfg.MeshyBaseURL != "https://api.meshy.ai/openapi/v1" {
		t.Fatalf("MeshyBaseURL mismatch: got %q", cfg.MeshyBaseURL)
	}
	if cfg.AssetProxyPrefix != "https://assets.meshy.ai/" {
		t.Fatalf("AssetProxyPrefix mismatch: got %q", cfg.AssetProxyPrefix)
	}
	if cfg.MeshMaxPollAttempts != 60 {
		t.Fatalf("MeshMaxPollAttempts mismatch: got %d", cfg.MeshMaxPollAttempts)
	}
	if cfg.MeshInitialPollDelay != 5*time.Second {
		t.Fatalf("MeshInitialPollDelay mismatch: got %s", cfg.MeshInitialPollDelay)
	}
}

func TestLoadConfigMissingCredentialsDoesNotFail(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MESHY_API_KEY", "")
	t.Setenv("DIRECTUS_URL", "")
	t.Setenv("DIRECTUS_TOKEN", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "" || cfg.MeshyAPIKey != "" || cfg.DirectusToken != "" {
		t.Fatalf("expected empty credentials, got %+v", cfg)
	}
}

func TestLoadConfigTrimsDirectusURL(t *testing.T) {
	t.Setenv("DIRECTUS_URL", "https://cms.example.com/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DirectusURL != "https://cms.example.com" {
		t.Fatalf("DirectusURL mismatch: got %q", cfg.DirectusURL)
	}
}

func TestLoadConfigParsesAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://lumafab.se, http://localhost:3000 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://lumafab.se", "http://localhost:3000"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins mismatch: got %#v", cfg.AllowedOrigins)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}
