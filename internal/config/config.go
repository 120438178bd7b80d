package config

import (
	"net/url"

	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
)

// Config represents the full application configuration. It is resolved once
// per invocation and read-only afterward.
type Config struct {
	API     APIConfig     `yaml:"api"`
	HTTP    HTTPConfig    `yaml:"http"`
	Prompt  PromptConfig  `yaml:"prompt"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig holds the upstream endpoint parameters.
// Key is secret material: it is never logged, never serialized, and never
// included in an error message.
type APIConfig struct {
	Key       string `yaml:"key"`
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"maxTokens"`
}

// HTTPConfig holds HTTP client settings. MaxRetries of 0 (the default)
// means a single attempt per invocation.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// PromptConfig bounds locally-validated prompt size.
type PromptConfig struct {
	MaxTokens int `yaml:"maxTokens"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// MetricsConfig configures per-run usage tracking.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Validate checks the invariants the request pipeline relies on. The API
// key value is never echoed back, only its absence.
func (c Config) Validate() error {
	if c.API.Key == "" {
		return llmhttp.NewValidationError("llmq", "API key not set (set LLM_API_KEY or OPENAI_API_KEY)")
	}
	if c.API.MaxTokens <= 0 {
		return llmhttp.NewValidationError("llmq", "max tokens must be a positive integer")
	}
	u, err := url.Parse(c.API.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return llmhttp.NewValidationError("llmq", "endpoint must be a valid http(s) URL")
	}
	return nil
}
