// Package cli defines the command-line surface. It is deliberately thin:
// flags are parsed here, everything else happens in the runner.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Invocation carries the resolved flag values for one run. Flag defaults
// come from configuration, so a populated Invocation is the final word on
// what the user asked for.
type Invocation struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Endpoint    string
	Timeout     time.Duration
	Temperature *float64
	Verbose     bool
}

// Runner executes one prompt/response cycle and returns the reply text.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (string, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Runner           Runner
	Args             Arguments
	DefaultModel     string
	DefaultEndpoint  string
	DefaultMaxTokens int
	DefaultTimeout   time.Duration
	Version          string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	var (
		prompt      string
		model       string
		maxTokens   int
		endpoint    string
		timeout     time.Duration
		temperature float64
		verbose     bool
		showVersion bool
	)

	root := &cobra.Command{
		Use:   "llmq",
		Short: "Send a prompt to an OpenAI-compatible chat completions API",
		Long: "llmq submits a single prompt to an OpenAI-compatible chat completions\n" +
			"endpoint and prints the model's reply to standard output.",
		Example: `  llmq --prompt "What is the capital of France?"
  llmq --prompt "Summarize this" --model gpt-4o-mini --max-tokens 200
  LLM_ENDPOINT=http://localhost:8080/v1/chat/completions llmq -p "hi"`,
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt text to send (required)")
	root.Flags().StringVar(&model, "model", deps.DefaultModel, "Model name, passed through verbatim")
	root.Flags().IntVar(&maxTokens, "max-tokens", deps.DefaultMaxTokens, "Positive cap on response tokens")
	root.Flags().StringVar(&endpoint, "endpoint", deps.DefaultEndpoint, "Chat completions endpoint URL")
	root.Flags().DurationVar(&timeout, "timeout", deps.DefaultTimeout, "Request timeout")
	root.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature (omitted unless set)")
	root.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging to stderr")
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}

		if prompt == "" {
			_ = cmd.Usage()
			return fmt.Errorf("--prompt is required")
		}

		inv := Invocation{
			Prompt:    prompt,
			Model:     model,
			MaxTokens: maxTokens,
			Endpoint:  endpoint,
			Timeout:   timeout,
			Verbose:   verbose,
		}
		if cmd.Flags().Changed("temperature") {
			inv.Temperature = &temperature
		}

		reply, err := deps.Runner.Run(cmd.Context(), inv)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	}

	return root
}
