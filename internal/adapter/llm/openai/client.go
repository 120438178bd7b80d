package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
)

const (
	providerName    = "openai"
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultTimeout  = 30 * time.Second
)

// HTTPClient posts chat completion requests to an OpenAI-compatible
// endpoint and interprets the result. The endpoint is fully caller
// controlled so self-hosted and proxy deployments work; only the wire
// shape is validated, never the host.
type HTTPClient struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
	retry    llmhttp.RetryConfig
	client   *http.Client

	logger  llmhttp.Logger
	metrics llmhttp.Metrics
	pricing llmhttp.Pricing
}

// NewHTTPClient creates a client for the given endpoint. An empty endpoint
// falls back to the public OpenAI chat completions URL.
func NewHTTPClient(apiKey, endpoint string) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		timeout:  defaultTimeout,
		retry:    llmhttp.SingleAttempt(),
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// SetTimeout sets the HTTP timeout. Non-positive values are ignored so the
// request deadline is always finite.
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	c.timeout = timeout
	c.client.Timeout = timeout
}

// SetRetryConfig installs an opt-in retry policy around the single-attempt
// core. The default performs exactly one attempt.
func (c *HTTPClient) SetRetryConfig(cfg llmhttp.RetryConfig) {
	c.retry = cfg
}

// SetLogger installs a structured logger.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// SetMetrics installs a metrics tracker.
func (c *HTTPClient) SetMetrics(metrics llmhttp.Metrics) {
	c.metrics = metrics
}

// SetPricing installs a cost calculator.
func (c *HTTPClient) SetPricing(pricing llmhttp.Pricing) {
	c.pricing = pricing
}

// Completion is the interpreted result of a successful API call. Text is
// the exact, unmodified content of the first choice's message.
type Completion struct {
	Text         string
	Model        string
	TokensIn     int
	TokensOut    int
	FinishReason string
	Cost         float64
}

// Complete serializes the request, performs the HTTP call, and interprets
// the outcome. Every failure mode maps to a typed error; none of them carry
// the API key or an unbounded upstream payload.
func (c *HTTPClient) Complete(ctx context.Context, req ChatCompletionRequest) (*Completion, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, llmhttp.NewValidationError(providerName, fmt.Sprintf("failed to marshal request: %v", err))
	}

	var promptChars int
	for _, m := range req.Messages {
		promptChars += len(m.Content)
	}

	var completion *Completion
	operation := func(ctx context.Context) error {
		result, err := c.attempt(ctx, req.Model, jsonData, promptChars)
		if err != nil {
			return err
		}
		completion = result
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retry); err != nil {
		return nil, err
	}
	return completion, nil
}

// attempt performs exactly one request/response cycle. The body reader and
// Authorization header are rebuilt per attempt and not retained.
func (c *HTTPClient) attempt(ctx context.Context, model string, jsonData []byte, promptChars int) (*Completion, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, llmhttp.NewValidationError(providerName, fmt.Sprintf("invalid endpoint: %v", llmhttp.RedactURLSecrets(err.Error())))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    providerName,
			Model:       model,
			Endpoint:    c.endpoint,
			Timestamp:   time.Now(),
			PromptChars: promptChars,
			APIKey:      c.apiKey,
		})
	}
	if c.metrics != nil {
		c.metrics.RecordRequest(providerName, model)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		terr := c.classifyTransportError(ctx, err)
		c.observeError(ctx, model, duration, terr)
		return nil, terr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := llmhttp.NewTransportError(providerName, fmt.Sprintf("failed to read response body: %v", err))
		c.observeError(ctx, model, duration, terr)
		return nil, terr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := c.interpretErrorStatus(resp.StatusCode, body)
		c.observeError(ctx, model, duration, serr)
		return nil, serr
	}

	completion, cerr := c.interpretSuccess(body)
	if cerr != nil {
		c.observeError(ctx, model, duration, cerr)
		return nil, cerr
	}

	if c.pricing != nil {
		completion.Cost = c.pricing.GetCost(providerName, completion.Model, completion.TokensIn, completion.TokensOut)
	}
	if c.metrics != nil {
		c.metrics.RecordDuration(providerName, model, duration)
		c.metrics.RecordTokens(providerName, model, completion.TokensIn, completion.TokensOut)
		c.metrics.RecordCost(providerName, model, completion.Cost)
	}
	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:     providerName,
			Model:        completion.Model,
			Timestamp:    time.Now(),
			Duration:     duration,
			TokensIn:     completion.TokensIn,
			TokensOut:    completion.TokensOut,
			Cost:         completion.Cost,
			StatusCode:   resp.StatusCode,
			FinishReason: completion.FinishReason,
		})
	}

	return completion, nil
}

// classifyTransportError maps network-level failures, distinguishing
// timeouts so callers and future retry policies can treat them specially.
func (c *HTTPClient) classifyTransportError(ctx context.Context, err error) *llmhttp.Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return llmhttp.NewTransportError(providerName, fmt.Sprintf("request timed out after %s", c.timeout))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return llmhttp.NewTransportError(providerName, fmt.Sprintf("request timed out after %s", c.timeout))
	}

	return llmhttp.NewTransportError(providerName, llmhttp.RedactURLSecrets(err.Error()))
}

// interpretErrorStatus converts non-2xx responses to typed errors.
func (c *HTTPClient) interpretErrorStatus(statusCode int, body []byte) *llmhttp.Error {
	// Pull the upstream message out of the error envelope when present.
	// The envelope originates from the far end so it cannot contain our
	// secrets, but its length is still capped before reflection.
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = llmhttp.TruncateForLogging(errResp.Error.Message)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		// 401 bodies from hosted providers echo key prefixes, so the
		// envelope message is deliberately dropped here.
		return llmhttp.NewAuthenticationError(providerName, "authentication failed; check your API key")
	case http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError(providerName, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return llmhttp.NewInvalidRequestError(providerName, message, statusCode)
	default:
		if statusCode >= 500 {
			return llmhttp.NewUpstreamServerError(providerName, message, statusCode)
		}
		return llmhttp.NewUnexpectedStatusError(providerName, statusCode)
	}
}

// interpretSuccess decodes a 2xx body and extracts the first choice.
func (c *HTTPClient) interpretSuccess(body []byte) (*Completion, *llmhttp.Error) {
	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, llmhttp.NewMalformedResponseError(providerName,
			fmt.Sprintf("failed to decode response: %v (body: %s)", err, llmhttp.TruncateForLogging(string(body))))
	}

	// Some proxies report failures in the error envelope with a 200 status.
	if chatResp.Error != nil {
		return nil, llmhttp.NewInvalidRequestError(providerName,
			llmhttp.TruncateForLogging(chatResp.Error.Message), http.StatusOK)
	}

	if len(chatResp.Choices) == 0 {
		return nil, llmhttp.NewEmptyResponseError(providerName)
	}

	return &Completion{
		Text:         chatResp.Choices[0].Message.Content,
		Model:        chatResp.Model,
		TokensIn:     chatResp.Usage.PromptTokens,
		TokensOut:    chatResp.Usage.CompletionTokens,
		FinishReason: chatResp.Choices[0].FinishReason,
	}, nil
}

// observeError reports a failed attempt to the logger and metrics.
func (c *HTTPClient) observeError(ctx context.Context, model string, duration time.Duration, err *llmhttp.Error) {
	if c.metrics != nil {
		c.metrics.RecordError(providerName, model, err.Type)
	}
	if c.logger != nil {
		c.logger.LogError(ctx, llmhttp.ErrorLog{
			Provider:   providerName,
			Model:      model,
			Timestamp:  time.Now(),
			Duration:   duration,
			Error:      err,
			ErrorType:  err.Type,
			StatusCode: err.StatusCode,
			Retryable:  err.Retryable,
		})
	}
}
