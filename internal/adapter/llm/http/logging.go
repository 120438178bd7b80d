package http

import (
	"fmt"
	"regexp"
)

const (
	// MaxReflectedMessageLength caps upstream-sourced strings (error envelope
	// messages, undecodable body excerpts) before they are embedded in local
	// errors or logs. Upstream text is trusted not to contain our secrets,
	// but its length is not.
	MaxReflectedMessageLength = 200
)

// TruncateForLogging bounds a string for safe inclusion in errors and logs.
// Returns the first MaxReflectedMessageLength bytes plus a truncation
// indicator when the input is longer.
func TruncateForLogging(text string) string {
	if len(text) <= MaxReflectedMessageLength {
		return text
	}
	return text[:MaxReflectedMessageLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(text))
}

var secretQueryParams = []string{"key", "apiKey", "api_key", "token", "access_token"}

// RedactURLSecrets redacts API keys and tokens from URLs embedded in error
// text. Transport errors from net/http include the request URL verbatim;
// if a caller configured a key as a query parameter it would otherwise leak.
//
// Example:
//
//	input:  "Post \"https://host/v1?key=secret123\": connection refused"
//	output: "Post \"https://host/v1?key=[REDACTED]\": connection refused"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, param := range secretQueryParams {
		re := regexp.MustCompile(regexp.QuoteMeta(param) + `=([^&"\s]+)`)
		result = re.ReplaceAllString(result, param+"=[REDACTED]")
	}
	return result
}

// RedactAPIKey shows only the last 4 characters of an API key with explicit
// redaction markers. Keys of 4 characters or fewer are fully redacted.
func RedactAPIKey(key string) string {
	if len(key) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", key[len(key)-4:])
}
