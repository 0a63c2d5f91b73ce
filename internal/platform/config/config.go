package config

import "time"

type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Log       LogConfig                 `yaml:"log"`
	Web       WebConfig                 `yaml:"web"`
	Storage   StorageConfig             `yaml:"storage"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Priority  []string                  `yaml:"provider_priority"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StaticDir string `yaml:"static_dir"`
}

type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// ProviderConfig describes one upstream AI provider. LightModel serves
// text-only requests, CapableModel serves requests carrying an image.
type ProviderConfig struct {
	Type            string        `yaml:"type"`
	BaseURL         string        `yaml:"url"`
	APIKey          string        `yaml:"api_key"`
	LightModel      string        `yaml:"light_model"`
	CapableModel    string        `yaml:"capable_model"`
	TranscribeModel string        `yaml:"transcribe_model"`
	Temperature     float64       `yaml:"temperature"`
	MaxTokens       int           `yaml:"max_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}
