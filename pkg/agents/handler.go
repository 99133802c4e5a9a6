// Package agents contains the domain handlers and the supervisor that routes
// between them. Handlers share one capability contract; new domains register
// an implementation under a route name, no base-type coupling.
package agents

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"repsafe/pkg/models"
	"repsafe/pkg/websearch"
)

// Route names the classifier can emit.
const (
	RouteOrder   = "ORDER_AGENT"
	RouteProduct = "PRODUCT_AGENT"
	RouteSupport = "SUPPORT_AGENT"
	RouteNone    = "NONE"
)

// Context is the bounded slice of session state a handler receives: known
// entity ids plus a few recent turns, never the full history.
type Context struct {
	OrderID     string
	ProductID   string
	Topic       string
	RecentTurns []models.Message
}

// Handler turns a classified message into a domain-scoped draft reply.
type Handler interface {
	Name() string
	Handle(ctx context.Context, message string, hctx Context) (*models.DraftResponse, error)
}

// Registry maps route names to handlers.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(route string, h Handler) {
	r.handlers[route] = h
}

func (r *Registry) Get(route string) (Handler, bool) {
	h, ok := r.handlers[route]
	return h, ok
}

// formatToolResult renders a tool result for inclusion in a prompt.
func formatToolResult(toolName string, result any) string {
	if result == nil {
		return "Tool '" + toolName + "' returned no results."
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "Tool '" + toolName + "' returned an unprintable result."
	}
	return "Tool '" + toolName + "' returned:\n" + string(pretty.Pretty(data))
}

const (
	// Search result snippets shorter than this are not citable on their own.
	thinSnippetBelow = 80
	snippetMaxChars  = 400
)

// fillThinSnippets replaces too-thin web result snippets with paragraph text
// fetched from the page, when the searcher can fetch pages at all.
func fillThinSnippets(ctx context.Context, web websearch.Searcher, results []websearch.Result, logger *zap.Logger) []websearch.Result {
	fetcher, ok := web.(websearch.SnippetFetcher)
	if !ok {
		return results
	}
	for i, result := range results {
		if len(strings.TrimSpace(result.Content)) >= thinSnippetBelow {
			continue
		}
		snippet, err := fetcher.FetchSnippet(ctx, result.URL, snippetMaxChars)
		if err != nil {
			logger.Warn("snippet fetch failed", zap.String("url", result.URL), zap.Error(err))
			continue
		}
		if snippet != "" {
			results[i].Content = snippet
		}
	}
	return results
}

// contextSummary renders the bounded handler context for a prompt.
func contextSummary(hctx Context) string {
	summary := map[string]any{}
	if hctx.OrderID != "" {
		summary["order_id"] = hctx.OrderID
	}
	if hctx.ProductID != "" {
		summary["product_id"] = hctx.ProductID
	}
	if hctx.Topic != "" {
		summary["topic"] = hctx.Topic
	}
	if len(summary) == 0 {
		return "None"
	}
	data, _ := json.Marshal(summary)
	return string(data)
}
