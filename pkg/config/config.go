// Package config loads application configuration from a YAML file with
// environment-variable overrides. Numeric fields are validated at load
// time so bad values fail the run before any browser is launched.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LLMConfig holds model provider configuration. Provider selects the
// active provider; both providers keep their own model default.
type LLMConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	OpenAIModel string
	GroqModel   string
	Temperature float64
	MaxTokens   int
}

// BrowserConfig holds per-run browser defaults.
type BrowserConfig struct {
	Engine        string
	Headless      bool
	MaxIterations int
	AllowedHosts  []string
	ScreenshotDir string
}

// DatabaseConfig holds outcome-store configuration.
type DatabaseConfig struct {
	Driver string // "sqlite" or "mysql"
	DSN    string
}

// ValidationConfig holds prompt validator limits.
type ValidationConfig struct {
	MaxLength      int
	MinLength      int
	MaxTokens      int
	AllowHTML      bool
	Strict         bool
	CheckInjection bool
	CheckProfanity bool
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	LLM        LLMConfig
	Browser    BrowserConfig
	Database   DatabaseConfig
	Validation ValidationConfig
	Log        LogConfig
}

// LoadConfig loads configuration from file and environment variables.
// Environment variables use the WEBTRAIL_ prefix with underscores, e.g.
// WEBTRAIL_LLM_API_KEY overrides llm.api_key.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("WEBTRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, apperrors.NewConfiguration("config_file", err.Error())
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		LLM: LLMConfig{
			Provider:    v.GetString("llm.provider"),
			APIKey:      v.GetString("llm.api_key"),
			BaseURL:     v.GetString("llm.base_url"),
			OpenAIModel: v.GetString("llm.openai_model"),
			GroqModel:   v.GetString("llm.groq_model"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		},
		Browser: BrowserConfig{
			Engine:        v.GetString("browser.engine"),
			Headless:      v.GetBool("browser.headless"),
			MaxIterations: v.GetInt("browser.max_iterations"),
			AllowedHosts:  v.GetStringSlice("browser.allowed_hosts"),
			ScreenshotDir: v.GetString("browser.screenshot_dir"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Validation: ValidationConfig{
			MaxLength:      v.GetInt("validation.max_length"),
			MinLength:      v.GetInt("validation.min_length"),
			MaxTokens:      v.GetInt("validation.max_tokens"),
			AllowHTML:      v.GetBool("validation.allow_html"),
			Strict:         v.GetBool("validation.strict"),
			CheckInjection: v.GetBool("validation.check_injection"),
			CheckProfanity: v.GetBool("validation.check_profanity"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai_model", "gpt-4o")
	v.SetDefault("llm.groq_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1024)

	v.SetDefault("browser.engine", string(types.EngineChromium))
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.max_iterations", 10)
	v.SetDefault("browser.screenshot_dir", ".")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "webtrail.db")

	v.SetDefault("validation.max_length", 10000)
	v.SetDefault("validation.min_length", 10)
	v.SetDefault("validation.max_tokens", 4000)
	v.SetDefault("validation.check_injection", true)

	v.SetDefault("log.level", "info")
}

// Validate checks value ranges and enumerations. It returns a
// ConfigurationError naming the first offending key.
func (c *Config) Validate() error {
	if c.LLM.Provider != "openai" && c.LLM.Provider != "groq" {
		return apperrors.NewConfiguration("llm.provider",
			fmt.Sprintf("must be 'openai' or 'groq', got %q", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return apperrors.NewConfiguration("llm.temperature",
			fmt.Sprintf("must be between 0 and 2, got %g", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens < 1 {
		return apperrors.NewConfiguration("llm.max_tokens", "must be at least 1")
	}
	if !types.ValidEngine(types.EngineVariant(c.Browser.Engine)) {
		return apperrors.NewConfiguration("browser.engine",
			fmt.Sprintf("unknown engine variant %q", c.Browser.Engine))
	}
	if c.Browser.MaxIterations < 1 {
		return apperrors.NewConfiguration("browser.max_iterations", "must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return apperrors.NewConfiguration("server.port",
			fmt.Sprintf("must be a valid port, got %d", c.Server.Port))
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "mysql" {
		return apperrors.NewConfiguration("database.driver",
			fmt.Sprintf("must be 'sqlite' or 'mysql', got %q", c.Database.Driver))
	}
	if c.Validation.MinLength < 0 || c.Validation.MaxLength <= c.Validation.MinLength {
		return apperrors.NewConfiguration("validation.max_length",
			"max_length must be greater than min_length")
	}
	return nil
}

// Model returns the model name for the active provider.
func (c *LLMConfig) Model() string {
	if c.Provider == "groq" {
		return c.GroqModel
	}
	return c.OpenAIModel
}
