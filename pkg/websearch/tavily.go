// Package websearch provides the web search collaborator. Like semantic
// search it is optional enrichment: no key or a dead endpoint means empty
// results, not errors.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Result is one ranked web search result.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Searcher is the web search contract consumed by the agents.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Available() bool
}

// SnippetFetcher is the optional page-fetch capability a Searcher may offer.
// Agents use it to replace result snippets too thin to cite.
type SnippetFetcher interface {
	FetchSnippet(ctx context.Context, pageUrl string, maxChars int) (string, error)
}

type ClientConfig struct {
	ApiUrl  string
	ApiKey  string
	Timeout time.Duration
}

const DefaultApiUrl = "https://api.tavily.com"

// Client implements Searcher against a Tavily-style search API.
type Client struct {
	Config *ClientConfig
	Client *http.Client
	Logger *zap.Logger
}

func NewClient(config *ClientConfig, logger *zap.Logger) *Client {
	if config.ApiUrl == "" {
		config.ApiUrl = DefaultApiUrl
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		Config: config,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

func (c *Client) Available() bool {
	return c.Config.ApiKey != ""
}

type searchRequest struct {
	ApiKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if !c.Available() {
		return nil, nil
	}

	body, err := json.Marshal(&searchRequest{
		ApiKey:     c.Config.ApiKey,
		Query:      query,
		MaxResults: limit,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Config.ApiUrl+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Client.Do(req)
	if err != nil {
		c.Logger.Warn("web search unavailable", zap.Error(err))
		return nil, nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.Logger.Warn("web search returned non-200", zap.Int("status_code", res.StatusCode))
		return nil, nil
	}

	resp := &searchResponse{}
	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		c.Logger.Warn("web search response malformed", zap.Error(err))
		return nil, nil
	}
	return resp.Results, nil
}

// FetchSnippet downloads a result page and extracts its readable paragraph
// text, truncated to maxChars. Used when a search result's own snippet is
// too thin to cite.
func (c *Client) FetchSnippet(ctx context.Context, pageUrl string, maxChars int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageUrl, nil)
	if err != nil {
		return "", err
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", NewStatusError(res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", err
	}

	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})

	snippet := strings.Join(parts, "\n")
	if maxChars > 0 && len(snippet) > maxChars {
		snippet = snippet[:maxChars]
	}
	return snippet, nil
}

type StatusError struct {
	StatusCode int
}

func NewStatusError(code int) *StatusError {
	return &StatusError{StatusCode: code}
}

func (e *StatusError) Error() string {
	return http.StatusText(e.StatusCode)
}
