package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokens(t *testing.T) {
	tokens, err := parseTokens([]string{"a=user-a", "b=user-b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "user-a", "b": "user-b"}, tokens)

	for _, value := range []string{"missing-uid", "=uid", "token="} {
		_, err := parseTokens([]string{value})
		assert.Error(t, err, value)
	}
}
