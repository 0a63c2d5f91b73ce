package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
providers:
  gateway:
    type: openai
    api_key: test-key
    light_model: google/gemini-2.5-flash
    capable_model: google/gemini-2.5-pro
provider_priority:
  - gateway
`)

	result, err := NewLoader().WithDotEnv(false).WithPath(path).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	cfg := result.Config
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, expected 9090", cfg.Server.Port)
	}
	if cfg.Server.IP != "0.0.0.0" {
		t.Errorf("ip default not applied, got %q", cfg.Server.IP)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level default not applied, got %q", cfg.Log.Level)
	}
	if got := cfg.Providers["gateway"].Timeout; got != DefaultUpstreamTimeout {
		t.Errorf("provider timeout default not applied, got %v", got)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	result, err := NewLoader().WithDotEnv(false).WithPath(missing).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if result.Path != "" {
		t.Errorf("path = %q, expected empty for defaults", result.Path)
	}
	if len(result.Config.Priority) == 0 {
		t.Error("default priority chain is empty")
	}
}

func TestLoad_EnvOverridesCredentials(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  gateway:
    type: openai
    light_model: google/gemini-2.5-flash
provider_priority:
  - gateway
`)
	t.Setenv("AI_GATEWAY_API_KEY", "env-secret")
	t.Setenv("AI_GATEWAY_URL", "https://gateway.example/v1")

	result, err := NewLoader().WithDotEnv(false).WithPath(path).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	pc := result.Config.Providers["gateway"]
	if pc.APIKey != "env-secret" {
		t.Errorf("api key = %q, expected env override", pc.APIKey)
	}
	if pc.BaseURL != "https://gateway.example/v1" {
		t.Errorf("base url = %q, expected env override", pc.BaseURL)
	}
}

func TestConfiguredProviders(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"gateway": {APIKey: "k1", Timeout: time.Second},
			"openai":  {},
			"spare":   {APIKey: "k2"},
		},
		Priority: []string{"gateway", "openai", "spare", "ghost"},
	}

	got := ConfiguredProviders(cfg)
	if len(got) != 2 || got[0] != "gateway" || got[1] != "spare" {
		t.Errorf("ConfiguredProviders() = %v, expected [gateway spare]", got)
	}
}
