package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"repsafe/pkg/llm"
	"repsafe/pkg/models"
)

const supervisorSystemPrompt = `You are a Customer Service Supervisor for TechStore, an e-commerce platform.
Your role is to:
1. Understand what the customer needs
2. Route their request to the appropriate specialist
3. Compose helpful, on-brand responses

Response Guidelines:
- Be warm and professional
- Use simple, clear language
- Don't make promises you can't keep
- If unsure, acknowledge uncertainty
- Stay focused on helping the customer

Brand Voice:
- Friendly but professional
- Helpful and solution-oriented
- Honest about limitations
- Never defensive or dismissive`

const routingInstruction = "You are a routing classifier. Output only valid JSON."

const routingPromptTemplate = `Based on the user message, determine which specialist should handle this request.

User Message: %s

Previous Context: %s

Respond with a JSON object:
{
    "intent": "brief description of what the user wants",
    "route_to": "ORDER_AGENT" | "PRODUCT_AGENT" | "SUPPORT_AGENT" | "NONE",
    "requires_multiple": true/false,
    "additional_routes": ["list of additional agents if multiple needed"],
    "extracted_entities": {
        "order_id": "if mentioned",
        "product_id": "if mentioned",
        "topic": "main topic"
    },
    "is_greeting_or_smalltalk": true/false
}

Only respond with the JSON object, no additional text.`

// RoutingDecision is the parsed classifier output.
type RoutingDecision struct {
	Intent           string            `json:"intent"`
	RouteTo          string            `json:"route_to"`
	RequiresMultiple bool              `json:"requires_multiple"`
	AdditionalRoutes []string          `json:"additional_routes,omitempty"`
	Entities         map[string]string `json:"extracted_entities,omitempty"`
	IsGreeting       bool              `json:"is_greeting_or_smalltalk"`
	// Fallback marks a keyword-routed decision after a classifier parse failure.
	Fallback bool `json:"fallback,omitempty"`
}

var (
	orderKeywords   = []string{"order", "tracking", "shipped", "delivery", "cancel", "status", "ord-"}
	productKeywords = []string{"product", "price", "stock", "available", "buy", "search", "find", "show me", "prod-"}
	supportKeywords = []string{"return", "refund", "warranty", "shipping", "payment", "help", "support", "contact"}
)

// Supervisor owns the conversation: it classifies each message, dispatches
// handlers, merges their drafts and maintains conversation memory. One
// supervisor per session; Process calls for a session are serialized by the
// pipeline above it.
type Supervisor struct {
	generator llm.Generator
	registry  *Registry
	memory    *models.ConversationMemory
	logger    *zap.Logger
}

func NewSupervisor(generator llm.Generator, registry *Registry, logger *zap.Logger) *Supervisor {
	return &Supervisor{
		generator: generator,
		registry:  registry,
		memory:    models.NewConversationMemory(),
		logger:    logger,
	}
}

// Memory exposes the session memory for history queries.
func (s *Supervisor) Memory() *models.ConversationMemory {
	return s.memory
}

// ResetMemory discards the session state.
func (s *Supervisor) ResetMemory() {
	s.memory.Reset()
}

// Process runs one turn: classify, dispatch, merge, remember. It never
// returns an error; every collaborator failure degrades to a deterministic
// fallback so the caller always gets a draft.
func (s *Supervisor) Process(ctx context.Context, userMessage string) *models.DraftResponse {
	s.memory.AddMessage(models.RoleUser, userMessage, nil)

	decision := s.route(ctx, userMessage)

	if decision.Entities["order_id"] != "" {
		s.memory.SetFact("order_id", decision.Entities["order_id"])
	}
	if decision.Entities["product_id"] != "" {
		s.memory.SetFact("product_id", decision.Entities["product_id"])
	}
	if decision.Entities["topic"] != "" {
		s.memory.SetFact("last_topic", decision.Entities["topic"])
	}

	routes := s.selectRoutes(decision)
	drafts := s.dispatch(ctx, userMessage, routes)

	var content string
	switch {
	case len(drafts) == 0 && decision.IsGreeting:
		content = s.greet(ctx, userMessage)
	case len(drafts) == 0:
		content = s.direct(ctx, userMessage)
	default:
		content = s.compose(ctx, userMessage, decision, drafts)
	}

	s.memory.AddMessage(models.RoleAssistant, content, nil)

	var toolCalls []models.ToolCall
	var agentsUsed []string
	for _, draft := range drafts {
		toolCalls = append(toolCalls, draft.ToolCalls...)
		agentsUsed = append(agentsUsed, string(draft.Agent))
	}

	return &models.DraftResponse{
		Content:   content,
		Agent:     models.AgentSupervisor,
		ToolCalls: toolCalls,
		Metadata: map[string]any{
			"routing":     decision,
			"agents_used": agentsUsed,
		},
	}
}

// route classifies the message. The prompt carries only a small context
// summary, never full history, to bound prompt size and attack surface.
func (s *Supervisor) route(ctx context.Context, userMessage string) RoutingDecision {
	summary, _ := json.Marshal(map[string]any{
		"recent_messages": s.memory.Len(),
		"last_topic":      s.memory.Fact("last_topic"),
		"last_order_id":   s.memory.Fact("order_id"),
		"last_product_id": s.memory.Fact("product_id"),
	})

	raw, err := s.generator.Generate(ctx, llm.Request{
		Prompt:      fmt.Sprintf(routingPromptTemplate, userMessage, string(summary)),
		Instruction: routingInstruction,
		Temperature: 0.1,
		WantJSON:    true,
	})
	if err != nil {
		s.logger.Warn("routing classification failed, using keyword routing", zap.Error(err))
		return s.keywordRoute(userMessage)
	}

	parsed, err := llm.DecodeStructured(raw)
	if err != nil {
		s.logger.Warn("routing classification unparsable, using keyword routing", zap.Error(err))
		return s.keywordRoute(userMessage)
	}

	decision := RoutingDecision{
		Intent:           parsed.Get("intent").String(),
		RouteTo:          parsed.Get("route_to").String(),
		RequiresMultiple: parsed.Get("requires_multiple").Bool(),
		IsGreeting:       parsed.Get("is_greeting_or_smalltalk").Bool(),
		Entities:         map[string]string{},
	}
	for _, route := range parsed.Get("additional_routes").Array() {
		decision.AdditionalRoutes = append(decision.AdditionalRoutes, route.String())
	}
	for key, value := range parsed.Get("extracted_entities").Map() {
		decision.Entities[key] = value.String()
	}
	return decision
}

// keywordRoute is the deterministic fallback: fixed-order keyword sets, one
// route, support by default.
func (s *Supervisor) keywordRoute(message string) RoutingDecision {
	messageLower := strings.ToLower(message)

	for _, kw := range orderKeywords {
		if strings.Contains(messageLower, kw) {
			return RoutingDecision{RouteTo: RouteOrder, Intent: "order inquiry", Fallback: true}
		}
	}
	for _, kw := range productKeywords {
		if strings.Contains(messageLower, kw) {
			return RoutingDecision{RouteTo: RouteProduct, Intent: "product inquiry", Fallback: true}
		}
	}
	for _, kw := range supportKeywords {
		if strings.Contains(messageLower, kw) {
			return RoutingDecision{RouteTo: RouteSupport, Intent: "support inquiry", Fallback: true}
		}
	}
	return RoutingDecision{RouteTo: RouteSupport, Intent: "general inquiry", IsGreeting: true, Fallback: true}
}

// selectRoutes resolves the decision to registered handlers, preserving the
// classifier's ordering and dropping duplicates and unknown routes.
func (s *Supervisor) selectRoutes(decision RoutingDecision) []string {
	candidates := []string{}
	if decision.RouteTo != "" && decision.RouteTo != RouteNone {
		candidates = append(candidates, decision.RouteTo)
	}
	if decision.RequiresMultiple {
		candidates = append(candidates, decision.AdditionalRoutes...)
	}

	seen := map[string]bool{}
	var routes []string
	for _, route := range candidates {
		if seen[route] {
			continue
		}
		if _, ok := s.registry.Get(route); !ok {
			continue
		}
		seen[route] = true
		routes = append(routes, route)
	}
	return routes
}

// dispatch fans out over the selected handlers. Handlers only read memory, so
// they may run concurrently; results are joined in routing order before any
// memory write, keeping memory single-writer.
func (s *Supervisor) dispatch(ctx context.Context, userMessage string, routes []string) []*models.DraftResponse {
	if len(routes) == 0 {
		return nil
	}

	hctx := Context{
		OrderID:     s.memory.Fact("order_id"),
		ProductID:   s.memory.Fact("product_id"),
		Topic:       s.memory.Fact("last_topic"),
		RecentTurns: s.memory.History(3),
	}

	results := make([]*models.DraftResponse, len(routes))
	g, gctx := errgroup.WithContext(ctx)
	for i, route := range routes {
		i := i
		handler, _ := s.registry.Get(route)
		g.Go(func() error {
			draft, err := handler.Handle(gctx, userMessage, hctx)
			if err != nil {
				s.logger.Warn("handler failed",
					zap.String("handler", handler.Name()), zap.Error(err))
				return nil
			}
			results[i] = draft
			return nil
		})
	}
	_ = g.Wait()

	var drafts []*models.DraftResponse
	for _, draft := range results {
		if draft != nil {
			drafts = append(drafts, draft)
		}
	}
	return drafts
}

// compose synthesizes one coherent reply from the handler drafts instead of
// concatenating them verbatim.
func (s *Supervisor) compose(ctx context.Context, userMessage string, decision RoutingDecision, drafts []*models.DraftResponse) string {
	var labeled []string
	for _, draft := range drafts {
		labeled = append(labeled, fmt.Sprintf("[%s]: %s", draft.Agent, draft.Content))
	}

	intent := decision.Intent
	if intent == "" {
		intent = "general inquiry"
	}

	prompt := fmt.Sprintf(`User Message: %s

Routing Decision: %s

Specialist Responses:
%s

Instructions:
- Synthesize the specialist response(s) into a natural, helpful reply
- Maintain our brand voice (friendly, professional, solution-oriented)
- If multiple specialists responded, combine their information coherently
- Don't repeat yourself or include redundant information
- Keep the response focused and concise
- Add a brief follow-up offer if appropriate (e.g., "Is there anything else I can help you with?")

Compose the final response to send to the customer:`,
		userMessage, intent, strings.Join(labeled, "\n\n"))

	content, err := s.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: supervisorSystemPrompt,
		Temperature: 0.6,
	})
	if err != nil {
		// Degrade to the raw specialist content rather than failing the turn.
		s.logger.Warn("compose failed, joining specialist drafts", zap.Error(err))
		var raw []string
		for _, draft := range drafts {
			raw = append(raw, draft.Content)
		}
		return strings.Join(raw, "\n\n")
	}
	return content
}

const greetingFallback = "Hello! I can help you with order inquiries, product information, and general support. What can I do for you today?"

func (s *Supervisor) greet(ctx context.Context, userMessage string) string {
	prompt := fmt.Sprintf(`The customer said: "%s"

Respond with a warm, brief greeting. Offer to help with:
- Order inquiries (tracking, status, cancellations)
- Product information (search, details, availability)
- General support (returns, shipping, warranty, payments)

Keep it short and welcoming.`, userMessage)

	content, err := s.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: supervisorSystemPrompt,
		Temperature: 0.7,
	})
	if err != nil {
		s.logger.Warn("greeting generate failed", zap.Error(err))
		return greetingFallback
	}
	return content
}

const directFallback = "I'm not sure I can help with that directly, but I can assist with orders, products, and general support. Could you tell me a bit more about what you need?"

func (s *Supervisor) direct(ctx context.Context, userMessage string) string {
	prompt := fmt.Sprintf(`Customer message: "%s"

Provide a helpful response. If you can't help with their specific request,
kindly explain what you can help with (orders, products, support).`, userMessage)

	content, err := s.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Instruction: supervisorSystemPrompt,
		Temperature: 0.7,
	})
	if err != nil {
		s.logger.Warn("direct generate failed", zap.Error(err))
		return directFallback
	}
	return content
}
