package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStructuredValidJSON(t *testing.T) {
	result, err := DecodeStructured(`{"route_to": "ORDER_AGENT", "is_greeting_or_smalltalk": false}`)
	require.NoError(t, err)
	assert.Equal(t, "ORDER_AGENT", result.Get("route_to").String())
	assert.False(t, result.Get("is_greeting_or_smalltalk").Bool())
}

func TestDecodeStructuredCarvesObjectOutOfProse(t *testing.T) {
	raw := "Sure! Here is the JSON you asked for:\n```json\n{\"intent\": \"order inquiry\"}\n```\nLet me know if you need anything else."
	result, err := DecodeStructured(raw)
	require.NoError(t, err)
	assert.Equal(t, "order inquiry", result.Get("intent").String())
}

func TestDecodeStructuredRepairsBrokenJSON(t *testing.T) {
	// Trailing comma and single quotes, typical model sloppiness.
	result, err := DecodeStructured(`{'is_ok': true, 'issue': 'none',}`)
	require.NoError(t, err)
	assert.True(t, result.Get("is_ok").Bool())
}

func TestDecodeStructuredRejectsGarbage(t *testing.T) {
	_, err := DecodeStructured("I am not JSON at all")
	assert.Error(t, err)

	_, err = DecodeStructured("")
	assert.Error(t, err)
}

func TestStubGeneratorReplaysResponses(t *testing.T) {
	stub := &StubGenerator{Responses: []string{"one", "two"}}

	first, err := stub.Generate(context.Background(), Request{Prompt: "a"})
	require.NoError(t, err)
	second, _ := stub.Generate(context.Background(), Request{Prompt: "b"})
	third, _ := stub.Generate(context.Background(), Request{Prompt: "c"})

	assert.Equal(t, "one", first)
	assert.Equal(t, "two", second)
	assert.Equal(t, "two", third)
	assert.Equal(t, 3, stub.CallCount())
}
