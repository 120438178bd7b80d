package http_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	original := log.Writer()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(original)
	fn()
	return buf.String()
}

func TestDefaultLogger_LogRequest_RedactsKey(t *testing.T) {
	logger := llmhttp.NewDefaultLogger(llmhttp.LogLevelDebug, llmhttp.LogFormatHuman, true)
	secret := "sk-super-secret-key-12345"

	out := captureLog(t, func() {
		logger.LogRequest(context.Background(), llmhttp.RequestLog{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Timestamp:   time.Now(),
			PromptChars: 42,
			APIKey:      secret,
		})
	})

	assert.NotContains(t, out, secret)
	assert.Contains(t, out, "[REDACTED-2345]")
}

func TestDefaultLogger_LogRequest_LevelGating(t *testing.T) {
	logger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)

	out := captureLog(t, func() {
		logger.LogRequest(context.Background(), llmhttp.RequestLog{
			Provider: "openai",
			Model:    "gpt-3.5-turbo",
			APIKey:   "sk-anything",
		})
	})

	assert.Empty(t, out, "request logs are debug-level only")
}

func TestDefaultLogger_LogResponse_HumanFormat(t *testing.T) {
	logger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)

	out := captureLog(t, func() {
		logger.LogResponse(context.Background(), llmhttp.ResponseLog{
			Provider:     "openai",
			Model:        "gpt-3.5-turbo",
			Timestamp:    time.Now(),
			Duration:     1200 * time.Millisecond,
			TokensIn:     100,
			TokensOut:    50,
			Cost:         0.0002,
			StatusCode:   200,
			FinishReason: "stop",
		})
	})

	assert.Contains(t, out, "openai/gpt-3.5-turbo")
	assert.Contains(t, out, "tokens=100/50")
}

func TestDefaultLogger_LogError_JSONFormat(t *testing.T) {
	logger := llmhttp.NewDefaultLogger(llmhttp.LogLevelError, llmhttp.LogFormatJSON, true)

	out := captureLog(t, func() {
		logger.LogError(context.Background(), llmhttp.ErrorLog{
			Provider:   "openai",
			Model:      "gpt-3.5-turbo",
			Timestamp:  time.Now(),
			Error:      errors.New("connection refused"),
			ErrorType:  llmhttp.ErrTypeTransport,
			StatusCode: 0,
			Retryable:  true,
		})
	})

	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, `"retryable":true`)
}
