package http_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/llmq/llmq/internal/adapter/llm/http"
)

func TestDefaultMetrics_RecordsRun(t *testing.T) {
	m := llmhttp.NewDefaultMetrics()

	m.RecordRequest("openai", "gpt-3.5-turbo")
	m.RecordDuration("openai", "gpt-3.5-turbo", 800*time.Millisecond)
	m.RecordTokens("openai", "gpt-3.5-turbo", 120, 40)
	m.RecordCost("openai", "gpt-3.5-turbo", 0.00012)

	stats := m.GetStats()
	assert.Equal(t, 1, stats.TotalRequests)
	assert.Equal(t, 120, stats.TotalTokensIn)
	assert.Equal(t, 40, stats.TotalTokensOut)
	assert.InDelta(t, 0.00012, stats.TotalCost, 1e-9)
	assert.Equal(t, 800*time.Millisecond, stats.TotalDuration)
	assert.Equal(t, 0, stats.ErrorCount)
}

func TestDefaultMetrics_RecordsErrors(t *testing.T) {
	m := llmhttp.NewDefaultMetrics()

	m.RecordRequest("openai", "gpt-3.5-turbo")
	m.RecordError("openai", "gpt-3.5-turbo", llmhttp.ErrTypeRateLimit)

	stats := m.GetStats()
	assert.Equal(t, 1, stats.TotalRequests)
	assert.Equal(t, 1, stats.ErrorCount)
}
