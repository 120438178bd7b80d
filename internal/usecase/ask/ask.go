// Package ask implements the single prompt-to-reply unit of work.
package ask

import (
	"context"
	"fmt"

	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
)

// Query describes one prompt submission.
type Query struct {
	Prompt      string
	MaxTokens   int
	Temperature *float64
}

// Reply is the interpreted model answer. Text is passed through verbatim.
type Reply struct {
	Text         string
	Model        string
	TokensIn     int
	TokensOut    int
	FinishReason string
	Cost         float64
}

// Provider submits a query to an LLM backend.
type Provider interface {
	Complete(ctx context.Context, q Query) (Reply, error)
}

// Progress is an optional indicator shown while the request is in flight.
type Progress interface {
	Start()
	Stop()
}

// TokenEstimator returns an estimated token count for a prompt.
type TokenEstimator func(text string) int

// Deps captures the collaborators for the service.
type Deps struct {
	Provider        Provider
	Progress        Progress
	EstimateTokens  TokenEstimator
	MaxPromptTokens int
}

// Service runs exactly one prompt/response cycle per invocation and holds
// no state across calls.
type Service struct {
	provider        Provider
	progress        Progress
	estimateTokens  TokenEstimator
	maxPromptTokens int
}

// NewService wires up the unit of work.
func NewService(deps Deps) *Service {
	return &Service{
		provider:        deps.Provider,
		progress:        deps.Progress,
		estimateTokens:  deps.EstimateTokens,
		maxPromptTokens: deps.MaxPromptTokens,
	}
}

// Run validates the query, submits it, and returns the reply. Validation
// failures never reach the network.
func (s *Service) Run(ctx context.Context, q Query) (Reply, error) {
	if q.Prompt == "" {
		return Reply{}, llmhttp.NewValidationError("llmq", "prompt must not be empty")
	}
	if q.MaxTokens <= 0 {
		return Reply{}, llmhttp.NewValidationError("llmq", "max tokens must be a positive integer")
	}

	// Completion APIs charge per token, so an oversized prompt is rejected
	// locally before it becomes an expensive request.
	if s.estimateTokens != nil && s.maxPromptTokens > 0 {
		if tokens := s.estimateTokens(q.Prompt); tokens > s.maxPromptTokens {
			return Reply{}, llmhttp.NewValidationError("llmq",
				fmt.Sprintf("prompt too long: %d tokens (max: %d)", tokens, s.maxPromptTokens))
		}
	}

	if s.progress != nil {
		s.progress.Start()
		defer s.progress.Stop()
	}

	return s.provider.Complete(ctx, q)
}
