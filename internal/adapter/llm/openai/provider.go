package openai

import (
	"context"

	"github.com/llmq/llmq/internal/usecase/ask"
)

// Provider adapts the HTTP client to the ask.Provider interface.
type Provider struct {
	model  string
	client *HTTPClient
}

// NewProvider creates a provider bound to a model name. The model string is
// passed through to the API verbatim.
func NewProvider(model string, client *HTTPClient) *Provider {
	return &Provider{model: model, client: client}
}

// Complete builds the wire request and submits it.
func (p *Provider) Complete(ctx context.Context, q ask.Query) (ask.Reply, error) {
	req, err := BuildRequest(p.model, q.Prompt, q.MaxTokens, q.Temperature)
	if err != nil {
		return ask.Reply{}, err
	}

	completion, err := p.client.Complete(ctx, req)
	if err != nil {
		return ask.Reply{}, err
	}

	model := completion.Model
	if model == "" {
		model = p.model
	}

	return ask.Reply{
		Text:         completion.Text,
		Model:        model,
		TokensIn:     completion.TokensIn,
		TokensOut:    completion.TokensOut,
		FinishReason: completion.FinishReason,
		Cost:         completion.Cost,
	}, nil
}
