package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/thomascherickal/june/internal/june"
)

// Config holds the configuration for the generation backend and the
// conversational core.
type Config struct {
	Backend      string         `toml:"backend" mapstructure:"backend"`             // "ollama" or "dummy"
	Model        string         `toml:"model" mapstructure:"model"`                 // model identifier understood by the backend
	BaseURL      string         `toml:"base_url" mapstructure:"base_url"`           // inference server address
	Device       string         `toml:"device" mapstructure:"device"`               // "cpu" or "cuda"
	SystemPrompt string         `toml:"system_prompt" mapstructure:"system_prompt"` // seeds every new context
	BOSToken     string         `toml:"bos_token" mapstructure:"bos_token"`
	EOSToken     string         `toml:"eos_token" mapstructure:"eos_token"`
	EOSTokenID   int            `toml:"eos_token_id" mapstructure:"eos_token_id"`
	PersonaDirs  []string       `toml:"persona_dirs" mapstructure:"persona_dirs"`
	MaxContexts  int            `toml:"max_contexts" mapstructure:"max_contexts"` // 0 = unlimited
	ContextTTL   string         `toml:"context_ttl" mapstructure:"context_ttl"`   // Go duration string, "" = never expire
	Sampling     map[string]any `toml:"sampling" mapstructure:"sampling"`         // default generation parameters, passed through to the backend
}

// GetModel returns the model identifier.
func (c *Config) GetModel() string {
	return c.Model
}

// GetBaseURL returns the inference server address.
func (c *Config) GetBaseURL() string {
	return c.BaseURL
}

// GetDevice returns the configured compute device.
func (c *Config) GetDevice() june.Device {
	return june.Device(c.Device)
}

// GetMarkers returns the tokenizer sentinels for the configured model.
func (c *Config) GetMarkers() june.Markers {
	return june.Markers{
		BOS:        c.BOSToken,
		EOS:        c.EOSToken,
		EOSTokenID: c.EOSTokenID,
	}
}

// GetStoreOptions translates the eviction settings into store options.
func (c *Config) GetStoreOptions() (june.StoreOptions, error) {
	opts := june.StoreOptions{MaxContexts: c.MaxContexts}
	if c.ContextTTL != "" {
		ttl, err := time.ParseDuration(c.ContextTTL)
		if err != nil {
			return june.StoreOptions{}, fmt.Errorf("invalid context_ttl %q: %v", c.ContextTTL, err)
		}
		opts.TTL = ttl
	}
	return opts, nil
}

// NewDefaultConfig returns a new Config with default values.
func NewDefaultConfig(personaDir string) *Config {
	return &Config{
		Backend:      "ollama",
		Model:        "llama3.2",
		BaseURL:      "http://localhost:11434",
		Device:       "cpu",
		SystemPrompt: "",
		BOSToken:     "<s>",
		EOSToken:     "</s>",
		EOSTokenID:   2,
		PersonaDirs:  []string{personaDir},
		MaxContexts:  0,  // grow for the life of the process
		ContextTTL:   "", // never expire
		Sampling:     map[string]any{},
	}
}

// LoadConfig loads configuration from viper.
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// Expand environment variable references in the server address
	baseURL, err := expandEnvVar(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("error expanding base_url: %v", err)
	}
	config.BaseURL = baseURL

	// Convert persona directories to absolute paths
	for i, personaDir := range config.PersonaDirs {
		absPath, err := ResolvePath(personaDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving persona directory path '%s': %v", personaDir, err)
		}
		config.PersonaDirs[i] = absPath
	}

	return config, nil
}
