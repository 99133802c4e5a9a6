package guardrails

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsOverconfidentClaims(t *testing.T) {
	assert.True(t, ContainsOverconfidentClaims("We always guarantee next-day delivery"))
	assert.True(t, ContainsOverconfidentClaims("Your satisfaction is 100% guaranteed"))
	assert.True(t, ContainsOverconfidentClaims("we promise it will arrive on time"))
	assert.False(t, ContainsOverconfidentClaims("We will do our best to help"))
}

func TestExtractMentionedPrices(t *testing.T) {
	prices := ExtractMentionedPrices("The headphones cost $149.99 and the cable is 19,99 TL")
	require.Len(t, prices, 2)
	assert.Equal(t, "149.99", prices[0].String())
	assert.Equal(t, "19.99", prices[1].String())

	assert.Empty(t, ExtractMentionedPrices("No prices mentioned here"))
}

func TestSanitizeForLogging(t *testing.T) {
	key := strings.Repeat("a1B2", 10)
	sanitized := SanitizeForLogging("token: " + key + " end")
	assert.NotContains(t, sanitized, key)
	assert.Contains(t, sanitized, "[REDACTED_KEY]")

	clean := "ordinary text with no secrets"
	assert.Equal(t, clean, SanitizeForLogging(clean))
}
