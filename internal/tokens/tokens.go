// Package tokens provides coarse token estimation and budget-based truncation.
// These are rough guardrails for prompt sizing, not a real tokenizer.
package tokens

import "strings"

// CharsPerToken is the approximate number of characters per token.
const CharsPerToken = 4

// TruncationMarker is appended to text that has been cut to fit a budget.
const TruncationMarker = "\n…[truncated]"

// Estimate returns a rough token count for text (~4 chars per token, minimum 1).
func Estimate(text string) int {
	n := len(text) / CharsPerToken
	if n < 1 {
		return 1
	}
	return n
}

// Truncate cuts text to approximately maxTokens tokens, appending a marker.
// Text already within budget is returned unchanged. Truncating an
// already-truncated string is a no-op, so Truncate is idempotent.
func Truncate(text string, maxTokens int) string {
	if text == "" {
		return ""
	}
	if maxTokens < 1 {
		maxTokens = 1
	}
	if Estimate(text) <= maxTokens {
		return text
	}

	budget := maxTokens * CharsPerToken
	if strings.HasSuffix(text, TruncationMarker) && len(text) <= budget+len(TruncationMarker) {
		return text
	}
	if budget > len(text) {
		budget = len(text)
	}
	return text[:budget] + TruncationMarker
}
