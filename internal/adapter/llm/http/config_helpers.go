package http

import "time"

// ParseTimeout parses a duration string with a fallback default.
// Non-positive durations are rejected so the request deadline stays finite.
func ParseTimeout(value string, defaultVal time.Duration) time.Duration {
	if value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	if defaultVal <= 0 {
		return 30 * time.Second
	}
	return defaultVal
}

// BuildRetryConfig creates a RetryConfig from configuration strings.
// A maxRetries of 0 preserves single-attempt semantics.
func BuildRetryConfig(maxRetries int, initialBackoff, maxBackoff string, multiplier float64) RetryConfig {
	cfg := SingleAttempt()
	if maxRetries > 0 {
		cfg.MaxRetries = maxRetries
	}
	cfg.InitialBackoff = parseDuration(initialBackoff, cfg.InitialBackoff)
	cfg.MaxBackoff = parseDuration(maxBackoff, cfg.MaxBackoff)
	if multiplier > 0 {
		cfg.Multiplier = multiplier
	}
	return cfg
}

func parseDuration(value string, defaultVal time.Duration) time.Duration {
	if value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultVal
}
