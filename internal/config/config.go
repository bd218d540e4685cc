package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rpggio/genai-tracker/internal/generate"
	"gopkg.in/yaml.v3"
)

// Config defines tracker configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Extension ExtensionConfig `yaml:"extension"`
	Sync      SyncConfig      `yaml:"sync"`
	LLM       LLMConfig       `yaml:"llm"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
}

type ServerConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
	// URL points the CLI at a running server instead of the database.
	URL string `yaml:"url"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// ExtensionConfig locates the extension-side storage area.
type ExtensionConfig struct {
	Dir        string `yaml:"dir"`
	DebounceMS int    `yaml:"debounce_ms"`
}

// Debounce returns the storage watcher quiet window.
func (c ExtensionConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// SyncConfig is the address the page listens on for extension processes.
type SyncConfig struct {
	Addr string `yaml:"addr"`
}

// LLMConfig configures the checklist model.
type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMS int    `yaml:"timeout_ms"`
	// Endpoint, when set, sends generation requests to a remote checklist
	// server instead of calling the model directly.
	Endpoint string `yaml:"endpoint"`
}

// Timeout returns the request timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ClientConfig returns the model client settings.
func (c LLMConfig) ClientConfig() generate.ClientConfig {
	return generate.ClientConfig{
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey,
		Model:   c.Model,
		Timeout: c.Timeout(),
	}
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3000,
		},
		DB: DBConfig{
			Path: "genai-tracker.db",
		},
		Extension: ExtensionConfig{
			Dir:        "extension-storage",
			DebounceMS: 100,
		},
		Sync: SyncConfig{
			Addr: "127.0.0.1:3001",
		},
		LLM: LLMConfig{
			BaseURL:   "https://openrouter.ai/api/v1",
			Model:     "x-ai/grok-4.1-fast:free",
			TimeoutMS: 60000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("TRACKER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("TRACKER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TRACKER_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TRACKER_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if token := os.Getenv("TRACKER_SERVER_TOKEN"); token != "" {
		cfg.Server.Token = token
	}
	if serverURL := os.Getenv("TRACKER_SERVER_URL"); serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if dbPath := os.Getenv("TRACKER_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dir := os.Getenv("TRACKER_EXTENSION_DIR"); dir != "" {
		cfg.Extension.Dir = dir
	}
	if addr := os.Getenv("TRACKER_SYNC_ADDR"); addr != "" {
		cfg.Sync.Addr = addr
	}
	if baseURL := os.Getenv("TRACKER_LLM_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if key := firstEnv("TRACKER_LLM_API_KEY", "OPENROUTER_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if model := firstEnv("TRACKER_LLM_MODEL", "OPENROUTER_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if endpoint := os.Getenv("TRACKER_LLM_ENDPOINT"); endpoint != "" {
		cfg.LLM.Endpoint = endpoint
	}
	if level := os.Getenv("TRACKER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if mode := os.Getenv("TRACKER_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}

	if cfg.Transport.Mode != "http" && cfg.Transport.Mode != "stdio" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
