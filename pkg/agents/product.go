package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"repsafe/pkg/llm"
	"repsafe/pkg/models"
	"repsafe/pkg/rag"
	"repsafe/pkg/store"
	"repsafe/pkg/websearch"
)

var productIDPattern = regexp.MustCompile(`PROD-\d{3}`)

const productSystemPrompt = `You are a Product Assistant for an e-commerce platform.
Your role is to help customers find products and get product information.

Guidelines:
- Help customers find the right products for their needs
- Provide accurate product information from the tools
- If a product is out of stock, suggest alternatives if possible
- Don't make claims about products that aren't supported by the data
- Be honest about limitations - if we don't have what they're looking for, say so

Respond in a helpful, informative tone.`

// ProductAgent answers catalog queries. When the literal catalog search comes
// up empty it falls back to semantic search, then web search; both are
// optional and their absence only reduces recall.
type ProductAgent struct {
	generator llm.Generator
	products  store.ProductStore
	semantic  rag.Searcher
	web       websearch.Searcher
	logger    *zap.Logger
}

func NewProductAgent(generator llm.Generator, products store.ProductStore, semantic rag.Searcher, web websearch.Searcher, logger *zap.Logger) *ProductAgent {
	return &ProductAgent{
		generator: generator,
		products:  products,
		semantic:  semantic,
		web:       web,
		logger:    logger,
	}
}

func (a *ProductAgent) Name() string { return string(models.AgentProduct) }

var searchFillerWords = []string{"show me", "search for", "find", "looking for"}

func (a *ProductAgent) Handle(ctx context.Context, message string, hctx Context) (*models.DraftResponse, error) {
	var toolCalls []models.ToolCall
	toolResults := ""

	messageLower := strings.ToLower(message)
	productID := hctx.ProductID
	if match := productIDPattern.FindString(strings.ToUpper(message)); match != "" {
		productID = match
	}

	if productID != "" {
		if strings.Contains(messageLower, "stock") || strings.Contains(messageLower, "available") {
			product, ok := a.products.Get(productID)
			var result any
			if ok {
				availability := "Currently out of stock"
				if product.InStock {
					availability = "Available"
				}
				result = map[string]any{
					"product_id": product.ProductID,
					"name":       product.Name,
					"in_stock":   product.InStock,
					"message":    availability,
				}
			}
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "check_availability",
				Arguments: map[string]any{"product_id": productID},
				Result:    result,
			})
			toolResults = formatToolResult("check_availability", result)
		} else {
			product, ok := a.products.Get(productID)
			var result any
			if ok {
				result = product
			}
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "get_product_details",
				Arguments: map[string]any{"product_id": productID},
				Result:    result,
			})
			toolResults = formatToolResult("get_product_details", result)
		}
	} else {
		category := ""
		for _, cat := range []string{"electronics", "accessories"} {
			if strings.Contains(messageLower, cat) {
				category = strings.ToUpper(cat[:1]) + cat[1:]
				break
			}
		}

		searchTerms := messageLower
		for _, filler := range searchFillerWords {
			searchTerms = strings.ReplaceAll(searchTerms, filler, "")
		}
		searchTerms = strings.TrimSpace(searchTerms)

		if category != "" && isCategoryOnlyQuery(searchTerms, category) {
			results := a.products.ByCategory(category)
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "get_products_by_category",
				Arguments: map[string]any{"category": category},
				Result:    results,
			})
			toolResults = formatToolResult("get_products_by_category", results)
		} else {
			results := a.products.Search(searchTerms, category)
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "search_products",
				Arguments: map[string]any{"query": searchTerms, "category": category},
				Result:    results,
			})
			toolResults = formatToolResult("search_products", results)

			if len(results) == 0 {
				toolCalls, toolResults = a.enrich(ctx, searchTerms, category, toolCalls, toolResults)
			}
		}
	}

	prompt := fmt.Sprintf(`User Query: %s

Context: %s

Tool Results:
%s

Based on the above, provide a helpful response about the products.
If nothing was found, say so honestly rather than inventing products.`,
		message, contextSummary(hctx), toolResults)

	content, err := a.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: productSystemPrompt,
		Temperature: 0.7,
	})
	if err != nil {
		a.logger.Warn("product agent generate failed", zap.Error(err))
		return nil, err
	}

	return &models.DraftResponse{
		Content:   content,
		Agent:     models.AgentProduct,
		ToolCalls: toolCalls,
	}, nil
}

// isCategoryOnlyQuery reports whether the query asks for a category listing
// with no further search terms, e.g. "show me accessories".
func isCategoryOnlyQuery(searchTerms, category string) bool {
	remainder := strings.ReplaceAll(searchTerms, strings.ToLower(category), "")
	remainder = strings.Trim(remainder, " ?!.,")
	for _, word := range []string{"your", "all", "the", "some"} {
		remainder = strings.TrimSpace(strings.TrimPrefix(remainder, word))
	}
	return remainder == ""
}

// enrich widens an empty catalog search via semantic then web search.
func (a *ProductAgent) enrich(ctx context.Context, query, category string, toolCalls []models.ToolCall, toolResults string) ([]models.ToolCall, string) {
	if a.semantic != nil && a.semantic.Available() {
		filters := map[string]string{}
		if category != "" {
			filters["category"] = category
		}
		hits, err := a.semantic.Search(ctx, query, 5, filters)
		if err != nil {
			a.logger.Warn("semantic product search failed", zap.Error(err))
		} else if len(hits) > 0 {
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "semantic_search",
				Arguments: map[string]any{"query": query, "filters": filters},
				Result:    hits,
			})
			return toolCalls, toolResults + "\n\n" + formatToolResult("semantic_search", hits)
		}
	}

	if a.web != nil && a.web.Available() {
		results, err := a.web.Search(ctx, query, 3)
		if err != nil {
			a.logger.Warn("web product search failed", zap.Error(err))
		} else if len(results) > 0 {
			results = fillThinSnippets(ctx, a.web, results, a.logger)
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "web_search",
				Arguments: map[string]any{"query": query},
				Result:    results,
			})
			return toolCalls, toolResults + "\n\n" + formatToolResult("web_search", results)
		}
	}

	return toolCalls, toolResults
}
