package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
	"github.com/llmq/llmq/internal/adapter/llm/openai"
)

func mustBuildRequest(t *testing.T, prompt string) openai.ChatCompletionRequest {
	t.Helper()
	req, err := openai.BuildRequest("gpt-3.5-turbo", prompt, 1000, nil)
	require.NoError(t, err)
	return req
}

func successBody(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   "gpt-3.5-turbo",
		Choices: []openai.Choice{
			{
				Index:        0,
				Message:      openai.Message{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "What is the capital of France?", req.Messages[0].Content)
		assert.Equal(t, 1000, req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(successBody("Paris"))
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-api-key", server.URL)

	completion, err := client.Complete(context.Background(), mustBuildRequest(t, "What is the capital of France?"))

	require.NoError(t, err)
	assert.Equal(t, "Paris", completion.Text)
	assert.Equal(t, "gpt-3.5-turbo", completion.Model)
	assert.Equal(t, 10, completion.TokensIn)
	assert.Equal(t, 5, completion.TokensOut)
	assert.Equal(t, "stop", completion.FinishReason)
}

func TestComplete_AuthenticationError_NeverEchoesKey(t *testing.T) {
	const secret = "sk-super-secret-998877"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		// Hosted providers echo key prefixes in 401 bodies; the client must
		// not reflect any of it.
		_ = json.NewEncoder(w).Encode(openai.ErrorResponse{
			Error: openai.ErrorDetail{
				Message: "Incorrect API key provided: " + secret,
				Type:    "invalid_request_error",
				Code:    "invalid_api_key",
			},
		})
	}))
	defer server.Close()

	client := openai.NewHTTPClient(secret, server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	require.Error(t, err)
	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeAuthentication, httpErr.Type)
	assert.NotContains(t, err.Error(), secret)
	assert.NotContains(t, httpErr.Message, secret)
}

func TestComplete_ForbiddenMapsToAuthentication(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeAuthentication, httpErr.Type)
}

func TestComplete_RateLimitCarriesUpstreamMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeRateLimit, httpErr.Type)
	assert.Contains(t, httpErr.Message, "rate limited")
	assert.True(t, httpErr.IsRetryable())
}

func TestComplete_InvalidRequestCarriesUpstreamMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(openai.ErrorResponse{
			Error: openai.ErrorDetail{Message: "model `gpt-nonexistent` does not exist", Type: "invalid_request_error"},
		})
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeInvalidRequest, httpErr.Type)
	assert.Contains(t, httpErr.Message, "gpt-nonexistent")
}

func TestComplete_UpstreamMessageIsCapped(t *testing.T) {
	huge := strings.Repeat("x", 5000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(openai.ErrorResponse{
			Error: openai.ErrorDetail{Message: huge},
		})
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Less(t, len(httpErr.Message), 300, "reflected upstream strings must be bounded")
}

func TestComplete_ServerErrorDoesNotRetryByDefault(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeUpstreamServer, httpErr.Type)
	assert.Equal(t, 1, attempts, "a single failed attempt is reported as-is")
}

func TestComplete_OptInRetrySucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(successBody("ok"))
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)
	client.SetRetryConfig(llmhttp.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	})

	completion, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	require.NoError(t, err)
	assert.Equal(t, "ok", completion.Text)
	assert.Equal(t, 2, attempts)
}

func TestComplete_UnexpectedStatusCarriesCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeUnexpectedStatus, httpErr.Type)
	assert.Equal(t, http.StatusTeapot, httpErr.StatusCode)
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1}}`))
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeEmptyResponse, httpErr.Type)
}

func TestComplete_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>" + strings.Repeat("not json ", 200) + "</html>"))
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeMalformedResponse, httpErr.Type)
	assert.Contains(t, httpErr.Message, "truncated", "full body must not be reflected")
}

func TestComplete_ErrorEnvelopeOnSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[],"error":{"message":"context length exceeded","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeInvalidRequest, httpErr.Type)
	assert.Contains(t, httpErr.Message, "context length exceeded")
}

func TestComplete_TimeoutIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := openai.NewHTTPClient("test-key", server.URL)
	client.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))
	elapsed := time.Since(start)

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeTransport, httpErr.Type)
	assert.Contains(t, httpErr.Message, "timed out")
	assert.Less(t, elapsed, 2*time.Second, "timeout must not hang past the configured bound")
}

func TestComplete_ConnectionRefusedIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := openai.NewHTTPClient("test-key", server.URL)

	_, err := client.Complete(context.Background(), mustBuildRequest(t, "hello"))

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeTransport, httpErr.Type)
}
