package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/llmq/llmq/internal/adapter/cli"
	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
	"github.com/llmq/llmq/internal/config"
	"github.com/llmq/llmq/internal/usecase/ask"
	"github.com/llmq/llmq/internal/version"
)

func main() {
	if err := run(); err != nil {
		printError(err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "llmq",
		EnvPrefix:   "LLM",
	})
	if err != nil {
		return llmhttp.NewValidationError("llmq", fmt.Sprintf("failed to load configuration: %v", err))
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Runner:           newApp(cfg),
		DefaultModel:     cfg.API.Model,
		DefaultEndpoint:  cfg.API.Endpoint,
		DefaultMaxTokens: cfg.API.MaxTokens,
		DefaultTimeout:   llmhttp.ParseTimeout(cfg.HTTP.Timeout, 0),
		Version:          version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "llmq"))
	}
	return paths
}

// printError writes the user-safe message to stderr. URL-embedded secrets
// are redacted as a last line of defense; typed errors never carry them.
func printError(err error) {
	msg := llmhttp.RedactURLSecrets(err.Error())
	if ask.IsTTY(os.Stderr.Fd()) {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", msg)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}

// exitCode maps failures to process exit codes: 2 for local configuration
// and validation problems, 1 for everything else.
func exitCode(err error) int {
	var clientErr *llmhttp.Error
	if errors.As(err, &clientErr) && clientErr.Type == llmhttp.ErrTypeValidation {
		return 2
	}
	return 1
}
