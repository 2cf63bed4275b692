package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterContentAcceptsCleanText(t *testing.T) {
	ms := NewModerationService()

	ok, reason := ms.FilterContent("Black iPhone 14 with a cracked screen, lost near the metro station.")
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, _ = ms.FilterContent("")
	assert.True(t, ok)
}

func TestFilterContentRejectsBannedWords(t *testing.T) {
	ms := NewModerationService()

	ok, reason := ms.FilterContent("this is a scam listing")
	assert.False(t, ok)
	assert.Equal(t, "inappropriate_language", reason)
}

func TestFilterContentRejectsURLs(t *testing.T) {
	ms := NewModerationService()

	ok, reason := ms.FilterContent("contact me at https://example.com/deal")
	assert.False(t, ok)
	assert.Equal(t, "url_not_allowed", reason)
}

func TestFilterContentRejectsRepeatedChars(t *testing.T) {
	ms := NewModerationService()

	ok, reason := ms.FilterContent("helloooooo anyone there")
	assert.False(t, ok)
	assert.Equal(t, "spam_detected", reason)
}

func TestGetRejectionMessageFallback(t *testing.T) {
	ms := NewModerationService()
	assert.NotEmpty(t, ms.GetRejectionMessage("unknown_reason"))
}
