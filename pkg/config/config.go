package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "AUTODOCS"

type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Client   ClientConfig   `mapstructure:"client"`
	Comments CommentsConfig `mapstructure:"comments"`
	Usage    UsageConfig    `mapstructure:"usage"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type LLMConfig struct {
	Provider       string `mapstructure:"provider" validate:"required,oneof=service ollama openai"`
	Model          string `mapstructure:"model" validate:"required_if=Provider ollama"`
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	APIKey         string `mapstructure:"api_key"`
	ClassifyPath   string `mapstructure:"classify_path"`
	SynthesizePath string `mapstructure:"synthesize_path"`
}

type ClientConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=1"`
	MaxAttempts       int     `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	InitialBackoffMs  int     `mapstructure:"initial_backoff_ms" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ClientConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffMs) * time.Millisecond
}

type CommentsConfig struct {
	Style                string `mapstructure:"style" validate:"oneof=short explanatory pr-review"`
	RemoteClassification bool   `mapstructure:"remote_classification"`
}

type UsageConfig struct {
	// DailyLimit caps synthesized saves per day; 0 means unlimited.
	DailyLimit int `mapstructure:"daily_limit" validate:"gte=0"`
}

type WatchConfig struct {
	Root           string   `mapstructure:"root" validate:"required"`
	DebounceMs     int      `mapstructure:"debounce_ms" validate:"gte=0"`
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
}

func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	// Addr is where watch mode serves /metrics; empty disables it.
	Addr string `mapstructure:"addr"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "service")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "http://localhost:8080")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.classify_path", "/classify")
	v.SetDefault("llm.synthesize_path", "/synthesize")

	v.SetDefault("client.timeout_seconds", 30)
	v.SetDefault("client.max_attempts", 3)
	v.SetDefault("client.initial_backoff_ms", 1000)
	v.SetDefault("client.requests_per_second", 0)
	v.SetDefault("client.burst", 1)

	v.SetDefault("comments.style", "short")
	v.SetDefault("comments.remote_classification", true)

	v.SetDefault("usage.daily_limit", 0)

	v.SetDefault("watch.root", ".")
	v.SetDefault("watch.debounce_ms", 300)
	v.SetDefault("watch.ignore_patterns", []string{".git", "node_modules", "vendor", ".idea", "*.swp", "*.tmp", "__pycache__"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.json", false)

	v.SetDefault("metrics.addr", "")
}

// LoadConfig reads filename (JSON) on top of the defaults. A missing file is
// not an error. Variables from an optional .env file and AUTODOCS_* variables
// override file values, e.g. AUTODOCS_LLM_API_KEY.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			first := invalid[0]
			return fmt.Errorf("invalid config: %s fails %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
