package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGatewayClientGenerate(t *testing.T) {
	var gotPath, gotAuth string
	var got gatewayRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(gatewayResponse{Output: []Field{
			{Name: "text", Value: "generated reply"},
		}})
	}))
	defer server.Close()

	c := NewGatewayClient(&GatewayConfig{ApiUrl: server.URL, ApiKey: "gw-key", Model: "test-model"}, zap.NewNop())

	text, err := c.Generate(context.Background(), Request{
		Prompt:      "hello",
		Instruction: "be brief",
		Temperature: 0.5,
		WantJSON:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "generated reply", text)
	assert.Equal(t, "/serve/v1/generate", gotPath)
	assert.Equal(t, "Bearer gw-key", gotAuth)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "be brief", got.Instruction)
	require.Len(t, got.Input, 1)
	assert.Equal(t, "prompt", got.Input[0].Name)
	assert.Equal(t, "hello", got.Input[0].Value)

	params := map[string]any{}
	for _, p := range got.Params {
		params[p.Name] = p.Value
	}
	assert.Equal(t, 0.5, params["temperature"])
	assert.Equal(t, "json", params["response_format"])
}

func TestGatewayClientSurfacesHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewGatewayClient(&GatewayConfig{ApiUrl: server.URL}, zap.NewNop())

	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}

func TestGatewayClientRejectsEmptyOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(gatewayResponse{})
	}))
	defer server.Close()

	c := NewGatewayClient(&GatewayConfig{ApiUrl: server.URL}, zap.NewNop())

	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	assert.ErrorContains(t, err, "empty gateway output")
}
