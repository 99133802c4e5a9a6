package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"repsafe/pkg/llm"
	"repsafe/pkg/models"
	"repsafe/pkg/store"
)

var orderIDPattern = regexp.MustCompile(`ORD-\d{3}`)

const orderSystemPrompt = `You are an Order Assistant for an e-commerce platform.
Your role is to help customers with their order-related queries.

Guidelines:
- Always verify the order ID before providing information
- Be helpful but accurate - never make up order information
- If an order cannot be found, politely ask the customer to verify the order ID
- For cancellation requests, explain the limitations clearly
- Protect customer privacy - don't reveal other customers' information

Respond in a helpful, professional tone.`

// OrderAgent answers order status, tracking and cancellation queries against
// the order store.
type OrderAgent struct {
	generator llm.Generator
	orders    store.OrderStore
	logger    *zap.Logger
}

func NewOrderAgent(generator llm.Generator, orders store.OrderStore, logger *zap.Logger) *OrderAgent {
	return &OrderAgent{generator: generator, orders: orders, logger: logger}
}

func (a *OrderAgent) Name() string { return string(models.AgentOrder) }

func (a *OrderAgent) Handle(ctx context.Context, message string, hctx Context) (*models.DraftResponse, error) {
	orderID := hctx.OrderID
	if match := orderIDPattern.FindString(strings.ToUpper(message)); match != "" {
		orderID = match
	}

	var toolCalls []models.ToolCall
	toolResults := ""

	if orderID != "" {
		messageLower := strings.ToLower(message)
		switch {
		case strings.Contains(messageLower, "cancel"):
			result := a.orders.Cancel(orderID)
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "cancel_order",
				Arguments: map[string]any{"order_id": orderID},
				Result:    result,
			})
			toolResults = formatToolResult("cancel_order", result)
		case strings.Contains(messageLower, "track") ||
			strings.Contains(messageLower, "shipping") ||
			strings.Contains(messageLower, "where"):
			tracking, ok := a.orders.Tracking(orderID)
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "get_tracking_info",
				Arguments: map[string]any{"order_id": orderID},
				Result:    tracking,
			})
			if ok {
				toolResults = formatToolResult("get_tracking_info", tracking)
			} else {
				toolResults = formatToolResult("get_tracking_info", nil)
			}
		case strings.Contains(messageLower, "status"):
			status, ok := a.orders.Status(orderID)
			var result any
			if ok {
				result = status
			}
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "get_order_status",
				Arguments: map[string]any{"order_id": orderID},
				Result:    result,
			})
			toolResults = formatToolResult("get_order_status", result)
		default:
			order, ok := a.orders.Get(orderID)
			var result any
			if ok {
				result = order
			}
			toolCalls = append(toolCalls, models.ToolCall{
				Name:      "get_order",
				Arguments: map[string]any{"order_id": orderID},
				Result:    result,
			})
			toolResults = formatToolResult("get_order", result)
		}
	}

	if toolResults == "" {
		toolResults = "No tools were called."
	}

	prompt := fmt.Sprintf(`User Query: %s

Context: %s

Tool Results:
%s

Based on the above, provide a helpful response to the customer about their order.
If the tools found nothing, say so honestly and ask the customer to verify the order ID.`,
		message, contextSummary(hctx), toolResults)

	content, err := a.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: orderSystemPrompt,
		Temperature: 0.5,
	})
	if err != nil {
		a.logger.Warn("order agent generate failed", zap.Error(err))
		return nil, err
	}

	return &models.DraftResponse{
		Content:   content,
		Agent:     models.AgentOrder,
		ToolCalls: toolCalls,
		Metadata:  map[string]any{"order_id": orderID},
	}, nil
}
