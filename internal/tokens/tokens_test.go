package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty string", "", 1},
		{"short string", "abc", 1},
		{"exactly one token", "abcd", 1},
		{"two tokens", "abcdefgh", 2},
		{"long string", strings.Repeat("a", 400), 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Estimate(tc.text))
		})
	}
}

func TestTruncate_UnderBudget(t *testing.T) {
	text := "short text"
	assert.Equal(t, text, Truncate(text, 100))
}

func TestTruncate_Empty(t *testing.T) {
	assert.Equal(t, "", Truncate("", 10))
}

func TestTruncate_OverBudget(t *testing.T) {
	text := strings.Repeat("x", 1000)
	result := Truncate(text, 10)

	assert.True(t, strings.HasSuffix(result, TruncationMarker))
	assert.Equal(t, strings.Repeat("x", 40)+TruncationMarker, result)
}

func TestTruncate_Idempotent(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 5),
		strings.Repeat("b", 41),
		strings.Repeat("c", 1000),
		"hello world this is a longer sentence for truncation",
	}
	budgets := []int{1, 3, 10, 100}

	for _, s := range inputs {
		for _, n := range budgets {
			once := Truncate(s, n)
			twice := Truncate(once, n)
			assert.Equal(t, once, twice, "truncate should be idempotent for len=%d budget=%d", len(s), n)
		}
	}
}
