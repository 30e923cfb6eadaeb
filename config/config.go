package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// LLMConfig holds the text-generation backend settings.
type LLMConfig struct {
	Provider    string  `toml:"provider"`     // "openai" or "google"
	APIKey      string  `toml:"api_key"`
	APIURL      string  `toml:"api_url"`      // base URL for OpenAI-compatible endpoints
	OpenAIModel string  `toml:"openai_model"`
	GeminiModel string  `toml:"gemini_model"`
	Temperature float64 `toml:"temperature"`
}

// Config holds the application configuration.
type Config struct {
	LLM LLMConfig `toml:"llm"`
}

// Default configuration values.
const (
	DefaultProvider    = "google"
	DefaultAPIURL      = "https://api.openai.com/v1"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTemperature = 0.4
)

const (
	configFileName = "config.toml"
	appDirName     = "PersonaTranslator"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    DefaultProvider,
			APIKey:      "",
			APIURL:      DefaultAPIURL,
			OpenAIModel: DefaultOpenAIModel,
			GeminiModel: DefaultGeminiModel,
			Temperature: DefaultTemperature,
		},
	}
}

// GetConfigDir returns the application configuration directory, creating it
// if necessary.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	appConfigDir := filepath.Join(configDir, appDirName)
	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}

	return appConfigDir, nil
}

// Load reads the configuration file, writing defaults on first run, then
// applies environment overrides.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, configFileName)

	cfg := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, configFileName)

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file holds an API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables take precedence over the
// config file. The variable names match the original deployment scripts.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("AI_API_URL"); v != "" {
		c.LLM.APIURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.OpenAIModel = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.LLM.GeminiModel = v
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.LLM.Temperature = t
		}
	}
}

// Validate checks that the configuration is usable. A missing API key is a
// hard error raised before any work starts.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "google":
	default:
		return fmt.Errorf("unsupported provider: %q (expected \"openai\" or \"google\")", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("AI_API_KEY is not set (config file or environment)")
	}
	return nil
}
