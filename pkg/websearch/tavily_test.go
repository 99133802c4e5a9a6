package websearch

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

func TestClientSearchSendsKeyAndQuery(t *testing.T) {
	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(searchResponse{Results: []Result{
			{Title: "Shipping times", URL: "https://example.com", Content: "3-5 days", Score: 0.9},
		}})
	}))
	defer server.Close()

	c := NewClient(&ClientConfig{ApiUrl: server.URL, ApiKey: "test-key"}, zap.NewNop())

	results, err := c.Search(context.Background(), "shipping times", 3)
	require.NoError(t, err)

	assert.Equal(t, "test-key", got.ApiKey)
	assert.Equal(t, "shipping times", got.Query)
	assert.Equal(t, 3, got.MaxResults)
	require.Len(t, results, 1)
	assert.Equal(t, "Shipping times", results[0].Title)
}

func TestClientSearchDegradesOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(&ClientConfig{ApiUrl: server.URL, ApiKey: "test-key"}, zap.NewNop())

	results, err := c.Search(context.Background(), "anything", 3)
	assert.NoError(t, err)
	assert.Nil(t, results)
}

func TestClientWithoutKeyIsUnavailable(t *testing.T) {
	c := NewClient(&ClientConfig{}, zap.NewNop())

	assert.False(t, c.Available())

	results, err := c.Search(context.Background(), "anything", 3)
	assert.NoError(t, err)
	assert.Nil(t, results)
}

func TestFetchSnippetExtractsParagraphText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body>
			<nav>menu</nav>
			<p>First paragraph.</p>
			<p>Second paragraph.</p>
		</body></html>`))
	}))
	defer server.Close()

	c := NewClient(&ClientConfig{ApiKey: "test-key"}, zap.NewNop())

	snippet, err := c.FetchSnippet(context.Background(), server.URL, 0)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", snippet)

	snippet, err = c.FetchSnippet(context.Background(), server.URL, 5)
	require.NoError(t, err)
	assert.Equal(t, "First", snippet)
}

func TestFetchSnippetReportsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(&ClientConfig{ApiKey: "test-key"}, zap.NewNop())

	_, err := c.FetchSnippet(context.Background(), server.URL, 0)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
