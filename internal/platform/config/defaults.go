package config

import (
	"sort"
	"time"
)

// DefaultUpstreamTimeout bounds a single provider call. The transport default
// alone is not enough; a hung upstream would otherwise pin the request.
const DefaultUpstreamTimeout = 60 * time.Second

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Storage: StorageConfig{
			Enabled: true,
			Dir:     "./data",
		},
		Providers: map[string]ProviderConfig{
			"gateway": {
				Type:         "openai",
				LightModel:   "google/gemini-2.5-flash",
				CapableModel: "google/gemini-2.5-pro",
				Temperature:  0.3,
				MaxTokens:    4096,
				Timeout:      DefaultUpstreamTimeout,
			},
			"openai": {
				Type:         "openai",
				LightModel:   "gpt-4o-mini",
				CapableModel: "gpt-4o",
				Temperature:  0.3,
				MaxTokens:    4096,
				Timeout:      DefaultUpstreamTimeout,
			},
		},
		Priority: []string{"gateway", "openai"},
	}
}

// applyDefaults fills zero values on a loaded config so partial config files
// remain valid.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Server.IP == "" {
		cfg.Server.IP = def.Server.IP
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = def.Log.Dir
	}
	if cfg.Log.File == "" {
		cfg.Log.File = def.Log.File
	}
	if cfg.Web.StaticDir == "" {
		cfg.Web.StaticDir = def.Web.StaticDir
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = def.Storage.Dir
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = def.Providers
	}
	if len(cfg.Priority) == 0 {
		for name := range cfg.Providers {
			cfg.Priority = append(cfg.Priority, name)
		}
		sort.Strings(cfg.Priority)
	}
	for name, pc := range cfg.Providers {
		if pc.Timeout == 0 {
			pc.Timeout = DefaultUpstreamTimeout
		}
		if pc.Type == "" {
			pc.Type = "openai"
		}
		if pc.TranscribeModel == "" {
			pc.TranscribeModel = "whisper-1"
		}
		cfg.Providers[name] = pc
	}
}
