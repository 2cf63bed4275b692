package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.Contains(t, codeAlphabet, string(r))
		}
		seen[code] = true
	}
	// 20 draws from a 36^6 space should essentially never collide.
	assert.Greater(t, len(seen), 1)
}

func TestCodesMatchCaseInsensitive(t *testing.T) {
	assert.True(t, codesMatch("ab12cd", "AB12CD"))
	assert.True(t, codesMatch("AB12CD", "AB12CD"))
	assert.True(t, codesMatch("  ab12cd  ", "AB12CD"))
	assert.False(t, codesMatch("AB12CE", "AB12CD"))
	assert.False(t, codesMatch("", "AB12CD"))
}

func TestCodeAlphabetIsUpperAlnum(t *testing.T) {
	assert.Equal(t, strings.ToUpper(codeAlphabet), codeAlphabet)
	assert.Len(t, codeAlphabet, 36)
}
