package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "value")
	assert.Equal(t, "value", GetEnvOrDefault("TEST_ENV_KEY", "fallback"))

	t.Setenv("TEST_ENV_KEY", "")
	assert.Equal(t, "fallback", GetEnvOrDefault("TEST_ENV_KEY", "fallback"))
}

func TestParseInteger(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 42, ParseInteger("42", 0))
	assert.Equal(t, -5, ParseInteger("-5", 0))
	assert.Equal(t, 7, ParseInteger("", 7))
	assert.Equal(t, 7, ParseInteger("abc", 7))
	assert.Equal(t, 7, ParseInteger("4.2", 7))
}

func TestParseBoolean(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"true", "TRUE", "1", "yes", "on", " On "} {
		assert.True(t, ParseBoolean(v, false), v)
	}
	for _, v := range []string{"false", "0", "no", "off"} {
		assert.False(t, ParseBoolean(v, true), v)
	}
	assert.True(t, ParseBoolean("", true))
	assert.False(t, ParseBoolean("maybe", false))
}

func TestParseArray(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ParseArray(""))
	assert.Equal(t, []string{"a", "b", "c"}, ParseArray("a,b,c"))
	assert.Equal(t, []string{"a", "b"}, ParseArray(" a , , b ,"))
	assert.Equal(t, []string{"*"}, ParseArray("*"))
}
