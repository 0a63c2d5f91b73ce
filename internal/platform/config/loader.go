package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

// envOverrides are applied after the config file so deployments can inject
// credentials without editing yaml. Keys are matched to providers by name.
type envOverrides struct {
	ConfigPath    string `env:"CONFIG_PATH"`
	Port          int    `env:"PORT"`
	GatewayAPIKey string `env:"AI_GATEWAY_API_KEY"`
	GatewayURL    string `env:"AI_GATEWAY_URL"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIURL     string `env:"OPENAI_BASE_URL"`
}

// Loader reads configuration from an optional yaml file plus the environment.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader with .env support enabled.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the config file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load assembles the effective configuration: yaml file (if present), then
// defaults for anything unset, then environment overrides for credentials.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	path := l.path
	if path == "" {
		path = overrides.ConfigPath
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		cfg = Default()
		path = ""
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyOverrides(cfg, overrides)

	return &Result{Config: cfg, Path: path}, nil
}

func applyOverrides(cfg *Config, overrides envOverrides) {
	if overrides.Port != 0 {
		cfg.Server.Port = overrides.Port
	}

	overrideProvider(cfg, "gateway", overrides.GatewayAPIKey, overrides.GatewayURL)
	overrideProvider(cfg, "openai", overrides.OpenAIAPIKey, overrides.OpenAIURL)
}

func overrideProvider(cfg *Config, name, apiKey, baseURL string) {
	pc, ok := cfg.Providers[name]
	if !ok {
		return
	}
	if apiKey != "" {
		pc.APIKey = apiKey
	}
	if baseURL != "" {
		pc.BaseURL = baseURL
	}
	cfg.Providers[name] = pc
}

// ConfiguredProviders returns the priority-ordered provider names that carry
// credentials. An empty result means the service cannot reach any upstream.
func ConfiguredProviders(cfg *Config) []string {
	var names []string
	for _, name := range cfg.Priority {
		pc, ok := cfg.Providers[name]
		if !ok {
			continue
		}
		if pc.APIKey == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
