package main

import (
	"context"

	"github.com/llmq/llmq/internal/adapter/cli"
	"github.com/llmq/llmq/internal/adapter/llm"
	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
	"github.com/llmq/llmq/internal/adapter/llm/openai"
	"github.com/llmq/llmq/internal/adapter/ui"
	"github.com/llmq/llmq/internal/config"
	"github.com/llmq/llmq/internal/usecase/ask"
)

// app assembles the request pipeline for one invocation: resolved
// configuration in, reply text or a typed error out. Flags have already
// been merged into the Invocation, so everything here is explicit — the
// API key in particular is passed by value, never looked up ambiently.
type app struct {
	cfg config.Config
}

func newApp(cfg config.Config) *app {
	return &app{cfg: cfg}
}

// Run implements cli.Runner.
func (a *app) Run(ctx context.Context, inv cli.Invocation) (string, error) {
	cfg := a.resolve(inv)
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	obs := buildObservability(cfg, inv.Verbose)

	client := openai.NewHTTPClient(cfg.API.Key, cfg.API.Endpoint)
	client.SetTimeout(llmhttp.ParseTimeout(cfg.HTTP.Timeout, 0))
	client.SetRetryConfig(llmhttp.BuildRetryConfig(
		cfg.HTTP.MaxRetries, cfg.HTTP.InitialBackoff, cfg.HTTP.MaxBackoff, cfg.HTTP.BackoffMultiplier))
	if obs.logger != nil {
		client.SetLogger(obs.logger)
	}
	if obs.metrics != nil {
		client.SetMetrics(obs.metrics)
	}
	client.SetPricing(llmhttp.NewDefaultPricing())

	var progress ask.Progress
	if ask.IsInteractive() && !inv.Verbose {
		progress = ui.NewSpinner()
	}

	service := ask.NewService(ask.Deps{
		Provider:        openai.NewProvider(cfg.API.Model, client),
		Progress:        progress,
		EstimateTokens:  llm.EstimateTokens,
		MaxPromptTokens: cfg.Prompt.MaxTokens,
	})

	reply, err := service.Run(ctx, ask.Query{
		Prompt:      inv.Prompt,
		MaxTokens:   cfg.API.MaxTokens,
		Temperature: inv.Temperature,
	})
	if err != nil {
		return "", err
	}

	return reply.Text, nil
}

// resolve overlays flag values onto the loaded configuration. Flags always
// carry config-derived defaults, so non-zero values win unconditionally.
func (a *app) resolve(inv cli.Invocation) config.Config {
	cfg := a.cfg
	if inv.Model != "" {
		cfg.API.Model = inv.Model
	}
	if inv.MaxTokens != 0 {
		cfg.API.MaxTokens = inv.MaxTokens
	}
	if inv.Endpoint != "" {
		cfg.API.Endpoint = inv.Endpoint
	}
	if inv.Timeout > 0 {
		cfg.HTTP.Timeout = inv.Timeout.String()
	}
	return cfg
}

// observabilityComponents holds shared observability instances.
type observabilityComponents struct {
	logger  llmhttp.Logger
	metrics llmhttp.Metrics
}

// buildObservability creates observability components based on
// configuration. --verbose forces debug-level logging regardless of config.
func buildObservability(cfg config.Config, verbose bool) observabilityComponents {
	var obs observabilityComponents

	if cfg.Logging.Enabled || verbose {
		logLevel := llmhttp.LogLevelInfo
		switch cfg.Logging.Level {
		case "debug":
			logLevel = llmhttp.LogLevelDebug
		case "error":
			logLevel = llmhttp.LogLevelError
		}
		if verbose {
			logLevel = llmhttp.LogLevelDebug
		}

		logFormat := llmhttp.LogFormatHuman
		if cfg.Logging.Format == "json" {
			logFormat = llmhttp.LogFormatJSON
		}

		obs.logger = llmhttp.NewDefaultLogger(logLevel, logFormat, cfg.Logging.RedactAPIKeys)
	}

	if cfg.Metrics.Enabled || verbose {
		obs.metrics = llmhttp.NewDefaultMetrics()
	}

	return obs
}
