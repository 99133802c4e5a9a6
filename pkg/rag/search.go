// Package rag provides the semantic search collaborator used to enrich
// product and FAQ lookups. It is optional: an unreachable or unconfigured
// search backend reduces recall, never fails a request.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Hit is one ranked snippet returned by a search backend.
type Hit struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Searcher is the semantic search contract consumed by the agents.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, filters map[string]string) ([]Hit, error)
	Available() bool
}

type ClientConfig struct {
	ApiUrl     string
	ApiKey     string
	Collection string
	// ScoreThreshold drops hits below this similarity.
	ScoreThreshold float64
	Timeout        time.Duration
}

// Client talks to a vector search service over HTTP.
type Client struct {
	Config *ClientConfig
	Client *http.Client
	Logger *zap.Logger
}

func NewClient(config *ClientConfig, logger *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if config.ScoreThreshold == 0 {
		config.ScoreThreshold = 0.5
	}
	return &Client{
		Config: config,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

func (c *Client) Available() bool {
	return c.Config.ApiUrl != "" && c.Config.ApiKey != ""
}

type searchRequest struct {
	Query          string            `json:"query"`
	Limit          int               `json:"limit"`
	Filter         map[string]string `json:"filter,omitempty"`
	ScoreThreshold float64           `json:"score_threshold,omitempty"`
}

type searchResponse struct {
	Result []Hit `json:"result"`
}

func (c *Client) Search(ctx context.Context, query string, limit int, filters map[string]string) ([]Hit, error) {
	if !c.Available() {
		return nil, nil
	}

	body, err := json.Marshal(&searchRequest{
		Query:          query,
		Limit:          limit,
		Filter:         filters,
		ScoreThreshold: c.Config.ScoreThreshold,
	})
	if err != nil {
		return nil, err
	}

	searchUrl := fmt.Sprintf("%s/collections/%s/search", c.Config.ApiUrl, c.Config.Collection)
	req, err := http.NewRequestWithContext(ctx, "POST", searchUrl, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.Config.ApiKey)

	res, err := c.Client.Do(req)
	if err != nil {
		c.Logger.Warn("semantic search unavailable", zap.Error(err))
		return nil, nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.Logger.Warn("semantic search returned non-200", zap.Int("status_code", res.StatusCode))
		return nil, nil
	}

	resp := &searchResponse{}
	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		c.Logger.Warn("semantic search response malformed", zap.Error(err))
		return nil, nil
	}
	return resp.Result, nil
}
