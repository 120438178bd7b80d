package openai

import (
	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
)

// BuildRequest constructs a chat completion request from resolved run
// parameters. The build is a pure transform: the same inputs always yield a
// structurally identical request, with the prompt placed verbatim as the
// single user-role message.
//
// The configuration layer validates inputs before they reach here; if a bad
// value slips through anyway this fails with a validation error rather than
// silently clamping.
func BuildRequest(model, prompt string, maxTokens int, temperature *float64) (ChatCompletionRequest, error) {
	if prompt == "" {
		return ChatCompletionRequest{}, llmhttp.NewValidationError(providerName, "prompt must not be empty")
	}
	if maxTokens <= 0 {
		return ChatCompletionRequest{}, llmhttp.NewValidationError(providerName, "max tokens must be a positive integer")
	}

	return ChatCompletionRequest{
		Model: model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}
