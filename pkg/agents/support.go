package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"repsafe/pkg/llm"
	"repsafe/pkg/models"
	"repsafe/pkg/store"
	"repsafe/pkg/websearch"
)

const supportSystemPrompt = `You are a Customer Support Assistant for an e-commerce platform.
Your role is to help customers with general inquiries, FAQ, and support requests.

Guidelines:
- Answer common questions using FAQ content when available
- For complex issues, offer to create a support ticket
- Provide contact information when customers need direct assistance
- Be empathetic and understanding with frustrated customers
- Never make promises about outcomes that aren't guaranteed
- If you don't have the answer, admit it and offer alternatives

Respond in a warm, helpful, and professional tone.`

var faqTopics = []string{"return", "refund", "shipping", "delivery", "warranty", "payment"}

// SupportAgent handles FAQ, contact and ticket requests, with an optional
// web-search fallback for topics the FAQ store doesn't cover.
type SupportAgent struct {
	generator llm.Generator
	support   store.SupportStore
	web       websearch.Searcher
	logger    *zap.Logger
}

func NewSupportAgent(generator llm.Generator, support store.SupportStore, web websearch.Searcher, logger *zap.Logger) *SupportAgent {
	return &SupportAgent{generator: generator, support: support, web: web, logger: logger}
}

func (a *SupportAgent) Name() string { return string(models.AgentSupport) }

func (a *SupportAgent) Handle(ctx context.Context, message string, hctx Context) (*models.DraftResponse, error) {
	var toolCalls []models.ToolCall
	var sections []string

	messageLower := strings.ToLower(message)

	matchedTopic := ""
	for _, topic := range faqTopics {
		if strings.Contains(messageLower, topic) {
			matchedTopic = topic
			break
		}
	}

	if matchedTopic != "" {
		faq, ok := a.support.FAQ(matchedTopic)
		var result any
		if ok {
			result = faq
		}
		toolCalls = append(toolCalls, models.ToolCall{
			Name:      "get_faq",
			Arguments: map[string]any{"topic": matchedTopic},
			Result:    result,
		})
		sections = append(sections, formatToolResult("get_faq", result))
	}

	if strings.Contains(messageLower, "contact") || strings.Contains(messageLower, "phone") ||
		strings.Contains(messageLower, "email") || strings.Contains(messageLower, "call") {
		contact := a.support.Contact()
		toolCalls = append(toolCalls, models.ToolCall{
			Name:   "get_contact_info",
			Result: contact,
		})
		sections = append(sections, formatToolResult("get_contact_info", contact))
	}

	if strings.Contains(messageLower, "ticket") || strings.Contains(messageLower, "complaint") ||
		strings.Contains(messageLower, "escalate") {
		ticket := a.support.CreateTicket("Customer Inquiry", message)
		toolCalls = append(toolCalls, models.ToolCall{
			Name:      "create_support_ticket",
			Arguments: map[string]any{"subject": "Customer Inquiry", "description": message},
			Result:    ticket,
		})
		sections = append(sections, formatToolResult("create_support_ticket", ticket))
	}

	if len(sections) == 0 && a.web != nil && a.web.Available() {
		results, err := a.web.Search(ctx, message, 3)
		if err != nil {
			a.logger.Warn("web help search failed", zap.Error(err))
		} else if len(results) > 0 {
			results = fillThinSnippets(ctx, a.web, results, a.logger)
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "web_search",
				Arguments: map[string]any{"query": message},
				Result:    results,
			})
			sections = append(sections, formatToolResult("web_search", results))
		}
	}

	toolResults := strings.Join(sections, "\n\n")
	if toolResults == "" {
		toolResults = "No specific FAQ matched."
	}

	prompt := fmt.Sprintf(`User Query: %s

Context: %s

Tool Results:
%s

Based on the above, provide a helpful response to the customer's support inquiry.`,
		message, contextSummary(hctx), toolResults)

	content, err := a.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: supportSystemPrompt,
		Temperature: 0.6,
	})
	if err != nil {
		a.logger.Warn("support agent generate failed", zap.Error(err))
		return nil, err
	}

	return &models.DraftResponse{
		Content:   content,
		Agent:     models.AgentSupport,
		ToolCalls: toolCalls,
	}, nil
}
