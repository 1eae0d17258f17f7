package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	LLM     LLMConfig
	Output  OutputConfig
	Server  ServerConfig
	Log     LogConfig
	Convert ConvertConfig
}

// LLMConfig holds settings for the OpenAI-compatible vision endpoint.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	VisionModel string        `mapstructure:"vision_model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
}

// Enabled reports whether an API key is configured
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// OutputConfig holds where processed artifacts are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Debug        bool          `mapstructure:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ConvertConfig holds batch conversion settings.
type ConvertConfig struct {
	Workers int `mapstructure:"workers"`
}

// Defaults
const (
	DefaultBaseURL     = "https://api.deepinfra.com/v1/openai"
	DefaultVisionModel = "meta-llama/Llama-4-Maverick-17B-128E-Instruct-FP8"
	DefaultOutputDir   = "invoice_output"
	DefaultMaxTokens   = 4092
)

// legacyEnv maps keys to the unprefixed variables older deployments set
var legacyEnv = map[string]string{
	"llm.api_key":  "LLM_API_KEY",
	"llm.base_url": "LLM_BASE_URL",
}

// New returns a viper instance with defaults, env bindings and the optional
// config file applied. Callers may bind command-line flags before Load.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", DefaultBaseURL)
	v.SetDefault("llm.vision_model", DefaultVisionModel)
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.max_tokens", DefaultMaxTokens)

	v.SetDefault("output.dir", DefaultOutputDir)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("convert.workers", 4)

	// Prefixed variable wins over the legacy name when both are set
	for key, legacy := range legacyEnv {
		env := "TALLY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, env, legacy)
	}
	// LLM_MODEL was the text model; vision is the only model used now
	_ = v.BindEnv("llm.vision_model", "TALLY_LLM_VISION_MODEL", "LLM_VISION_MODEL", "LLM_MODEL")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// Load decodes the resolved configuration and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LLM: LLMConfig{
			APIKey:      strings.TrimSpace(v.GetString("llm.api_key")),
			BaseURL:     strings.TrimRight(v.GetString("llm.base_url"), "/"),
			VisionModel: v.GetString("llm.vision_model"),
			Timeout:     v.GetDuration("llm.timeout"),
			MaxTokens:   v.GetInt64("llm.max_tokens"),
		},
		Output: OutputConfig{
			Dir: v.GetString("output.dir"),
		},
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			Debug:        v.GetBool("server.debug"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Convert: ConvertConfig{
			Workers: v.GetInt("convert.workers"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Convert.Workers < 1 {
		return fmt.Errorf("convert.workers must be at least 1, got %d", c.Convert.Workers)
	}
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	return nil
}
