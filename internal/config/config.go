// Package config provides file and environment configuration for the assistant.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Protocol names accepted in assistant.protocol.
const (
	ProtocolCompletion = "completion"
	ProtocolThread     = "thread"
)

// API holds the remote endpoint settings.
type API struct {
	Key          string        `yaml:"key" env:"OPENAI_API_KEY"`
	KeyPrefix    string        `yaml:"key_prefix" env:"OPENAI_API_KEY_PREFIX"`
	BaseURL      string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	TextModel    string        `yaml:"text_model" env:"OPENAI_TEXT_MODEL" env-default:"gpt-3.5-turbo"`
	VisionModel  string        `yaml:"vision_model" env:"OPENAI_VISION_MODEL" env-default:"gpt-4-vision-preview"`
	Temperature  float32       `yaml:"temperature" env:"OPENAI_TEMPERATURE"`
	MaxTokens    int           `yaml:"max_tokens" env:"OPENAI_MAX_TOKENS" env-default:"1000"`
	Timeout      time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"30s"`
	ImageTimeout time.Duration `yaml:"image_timeout" env:"API_IMAGE_TIMEOUT" env-default:"45s"`
}

// Limits holds admission and payload limits.
type Limits struct {
	MaxPerMinute      int           `yaml:"max_per_minute" env:"LIMIT_MAX_PER_MINUTE" env-default:"10"`
	MaxPerDay         int           `yaml:"max_per_day" env:"LIMIT_MAX_PER_DAY"`
	MinInterval       time.Duration `yaml:"min_interval" env:"LIMIT_MIN_INTERVAL"`
	ResetPeriod       time.Duration `yaml:"reset_period" env:"LIMIT_RESET_PERIOD" env-default:"60s"`
	MaxMessageLength  int           `yaml:"max_message_length" env:"LIMIT_MAX_MESSAGE_LENGTH" env-default:"2000"`
	MaxResponseLength int           `yaml:"max_response_length" env:"LIMIT_MAX_RESPONSE_LENGTH" env-default:"5000"`
	AdmitImages       bool          `yaml:"admit_images" env:"LIMIT_ADMIT_IMAGES"`
}

// Content holds the moderation lists.
type Content struct {
	FilteredWords []string `yaml:"filtered_words" env:"CONTENT_FILTERED_WORDS" env-separator:"," env-default:"spam,test repetitivo,abuso,insulto,ofensivo"`
	Patterns      []string `yaml:"patterns" env:"CONTENT_PATTERNS" env-separator:";"`
}

// Image holds image compression settings.
type Image struct {
	MaxDimension         int `yaml:"max_dimension" env:"IMAGE_MAX_DIMENSION" env-default:"1024"`
	Quality              int `yaml:"quality" env:"IMAGE_QUALITY" env-default:"80"`
	CompressedQuality    int `yaml:"compressed_quality" env:"IMAGE_COMPRESSED_QUALITY" env-default:"50"`
	CompressionThreshold int `yaml:"compression_threshold" env:"IMAGE_COMPRESSION_THRESHOLD" env-default:"1000"`
}

// Assistant holds the conversation protocol settings.
type Assistant struct {
	Protocol     string        `yaml:"protocol" env:"ASSISTANT_PROTOCOL" env-default:"completion"`
	ID           string        `yaml:"id" env:"OPENAI_ASSISTANT_ID"`
	APIVersion   string        `yaml:"api_version" env:"ASSISTANT_API_VERSION" env-default:"assistants=v2"`
	PollAttempts int           `yaml:"poll_attempts" env:"ASSISTANT_POLL_ATTEMPTS" env-default:"30"`
	PollInterval time.Duration `yaml:"poll_interval" env:"ASSISTANT_POLL_INTERVAL" env-default:"1s"`
}

// Tracing holds the OTLP exporter settings.
type Tracing struct {
	Enabled  bool   `yaml:"enabled" env:"TRACING_ENABLED" env-default:"false"`
	Endpoint string `yaml:"endpoint" env:"TRACING_ENDPOINT" env-default:"localhost:4318"`
}

// Config holds all configuration for the application.
type Config struct {
	API       API       `yaml:"api"`
	Limits    Limits    `yaml:"limits"`
	Content   Content   `yaml:"content"`
	Image     Image     `yaml:"image"`
	Assistant Assistant `yaml:"assistant"`
	Tracing   Tracing   `yaml:"tracing"`

	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Locale       string `yaml:"locale" env:"LOCALE" env-default:"es"`
	MetricsAddr  string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	HistoryLimit int    `yaml:"history_limit" env:"HISTORY_LIMIT" env-default:"100"`
}

// presets holds the defaults of settings where zero is a meaningful value.
// cleanenv fills env-default only into zero fields, after the file is read,
// so these are set before reading instead of tagged.
func presets() Config {
	return Config{
		API: API{
			KeyPrefix:   "sk-",
			Temperature: 0.7,
		},
		Limits: Limits{
			MaxPerDay:   100,
			MinInterval: 2 * time.Second,
			AdmitImages: true,
		},
	}
}

// Load reads configuration from the YAML file at path, if any, and then
// from the environment. Defaults apply to anything left unset; a zero
// day cap, interval, temperature or key prefix and admit_images: false
// are kept as written.
func Load(path string) (*Config, error) {
	cfg := presets()
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field constraints. A missing API key is
// not an error here; it is reported on first use.
func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.Timeout <= 0 || c.API.ImageTimeout <= 0 {
		errs = append(errs, errors.New("api timeouts must be positive"))
	}
	if c.Limits.MaxPerMinute <= 0 {
		errs = append(errs, errors.New("limits.max_per_minute must be positive"))
	}
	if c.Limits.MaxPerDay < 0 {
		errs = append(errs, errors.New("limits.max_per_day must not be negative"))
	}
	if c.Limits.MinInterval < 0 || c.Limits.ResetPeriod <= 0 {
		errs = append(errs, errors.New("limits intervals are out of range"))
	}
	if c.Limits.MaxMessageLength <= 0 || c.Limits.MaxResponseLength <= 0 {
		errs = append(errs, errors.New("limits lengths must be positive"))
	}
	if c.Image.MaxDimension <= 0 {
		errs = append(errs, errors.New("image.max_dimension must be positive"))
	}
	if !validQuality(c.Image.Quality) || !validQuality(c.Image.CompressedQuality) {
		errs = append(errs, errors.New("image qualities must be between 1 and 100"))
	}
	switch strings.ToLower(c.Assistant.Protocol) {
	case ProtocolCompletion:
	case ProtocolThread:
		if c.Assistant.ID == "" {
			errs = append(errs, errors.New("assistant.id is required for the thread protocol"))
		}
		if c.Assistant.PollAttempts <= 0 || c.Assistant.PollInterval <= 0 {
			errs = append(errs, errors.New("assistant polling settings must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown assistant.protocol %q", c.Assistant.Protocol))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// HasCredential reports whether the API key is present and has the expected prefix.
func (a API) HasCredential() bool {
	key := strings.TrimSpace(a.Key)
	return key != "" && strings.HasPrefix(key, a.KeyPrefix)
}

func validQuality(q int) bool {
	return q >= 1 && q <= 100
}
