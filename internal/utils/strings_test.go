package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "shorter than limit", input: "hello", maxLen: 10, expected: "hello"},
		{name: "exactly at limit", input: "hello", maxLen: 5, expected: "hello"},
		{name: "truncated", input: "hello world", maxLen: 5, expected: "hello..."},
		{name: "multibyte runes", input: "日本語のテキスト", maxLen: 3, expected: "日本語..."},
		{name: "zero limit", input: "hello", maxLen: 0, expected: ""},
		{name: "empty input", input: "", maxLen: 5, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TruncateString(tt.input, tt.maxLen))
		})
	}
}
