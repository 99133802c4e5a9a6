package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repsafe/pkg/llm"
	"repsafe/pkg/models"
)

// fakeHandler records invocations and returns a canned draft.
type fakeHandler struct {
	name    string
	content string
	calls   int
	lastCtx Context
}

func (f *fakeHandler) Name() string { return f.name }

func (f *fakeHandler) Handle(_ context.Context, _ string, hctx Context) (*models.DraftResponse, error) {
	f.calls++
	f.lastCtx = hctx
	return &models.DraftResponse{
		Content: f.content,
		Agent:   models.AgentType(f.name),
		ToolCalls: []models.ToolCall{
			{Name: f.name + "_tool"},
		},
	}, nil
}

func newTestSupervisor(stub *llm.StubGenerator, handlers map[string]Handler) *Supervisor {
	registry := NewRegistry()
	for route, h := range handlers {
		registry.Register(route, h)
	}
	return NewSupervisor(stub, registry, zap.NewNop())
}

func TestSupervisorRoutesToClassifiedHandler(t *testing.T) {
	order := &fakeHandler{name: "order_agent", content: "order draft"}
	stub := &llm.StubGenerator{Responses: []string{
		`{"intent": "order inquiry", "route_to": "ORDER_AGENT", "extracted_entities": {"order_id": "ORD-002"}}`,
		"merged reply",
	}}
	s := newTestSupervisor(stub, map[string]Handler{RouteOrder: order})

	draft := s.Process(context.Background(), "Can I cancel order ORD-002?")

	assert.Equal(t, 1, order.calls)
	assert.Equal(t, "merged reply", draft.Content)
	assert.Equal(t, models.AgentSupervisor, draft.Agent)
	assert.Equal(t, []string{"order_agent"}, draft.Metadata["agents_used"])
	require.Len(t, draft.ToolCalls, 1)
	assert.Equal(t, "order_agent_tool", draft.ToolCalls[0].Name)
}

func TestSupervisorPersistsExtractedEntities(t *testing.T) {
	order := &fakeHandler{name: "order_agent", content: "order draft"}
	stub := &llm.StubGenerator{Responses: []string{
		`{"route_to": "ORDER_AGENT", "extracted_entities": {"order_id": "ORD-001", "topic": "shipping"}}`,
		"merged reply",
	}}
	s := newTestSupervisor(stub, map[string]Handler{RouteOrder: order})

	s.Process(context.Background(), "Where is ORD-001?")

	assert.Equal(t, "ORD-001", s.Memory().Fact("order_id"))
	assert.Equal(t, "shipping", s.Memory().Fact("last_topic"))
	assert.Equal(t, "ORD-001", order.lastCtx.OrderID)
}

func TestSupervisorKeywordFallbackOnUnparsableClassification(t *testing.T) {
	order := &fakeHandler{name: "order_agent", content: "order draft"}
	support := &fakeHandler{name: "support_agent", content: "support draft"}
	stub := &llm.StubGenerator{Responses: []string{"definitely not json"}}
	s := newTestSupervisor(stub, map[string]Handler{RouteOrder: order, RouteSupport: support})

	s.Process(context.Background(), "please cancel my order")

	assert.Equal(t, 1, order.calls, "order keywords must win in fixed order")
	assert.Equal(t, 0, support.calls)
}

func TestSupervisorKeywordFallbackDefaultsToSupport(t *testing.T) {
	support := &fakeHandler{name: "support_agent", content: "support draft"}
	stub := &llm.StubGenerator{Responses: []string{"broken"}}
	s := newTestSupervisor(stub, map[string]Handler{RouteSupport: support})

	s.Process(context.Background(), "tell me about payment options")

	assert.Equal(t, 1, support.calls)
}

func TestSupervisorFansOutToMultipleHandlersInOrder(t *testing.T) {
	order := &fakeHandler{name: "order_agent", content: "order draft"}
	product := &fakeHandler{name: "product_agent", content: "product draft"}
	stub := &llm.StubGenerator{Responses: []string{
		`{"route_to": "ORDER_AGENT", "requires_multiple": true, "additional_routes": ["PRODUCT_AGENT"]}`,
		"merged reply",
	}}
	s := newTestSupervisor(stub, map[string]Handler{RouteOrder: order, RouteProduct: product})

	draft := s.Process(context.Background(), "cancel ORD-001 and tell me about PROD-004")

	assert.Equal(t, 1, order.calls)
	assert.Equal(t, 1, product.calls)
	// Join order must follow routing order regardless of completion order.
	assert.Equal(t, []string{"order_agent", "product_agent"}, draft.Metadata["agents_used"])

	composePrompt := stub.Calls[len(stub.Calls)-1].Prompt
	assert.Less(t, strings.Index(composePrompt, "order draft"), strings.Index(composePrompt, "product draft"))
}

func TestSupervisorGreetingWithoutHandlers(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{
		`{"route_to": "NONE", "is_greeting_or_smalltalk": true}`,
		"Hello! How can I help?",
	}}
	s := newTestSupervisor(stub, nil)

	draft := s.Process(context.Background(), "hi there")

	assert.Equal(t, "Hello! How can I help?", draft.Content)
	assert.Empty(t, draft.Metadata["agents_used"])
}

func TestSupervisorRoutingSummaryResetsWithMemory(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{
		`{"route_to": "NONE", "is_greeting_or_smalltalk": true}`,
		"hello",
		`{"route_to": "NONE", "is_greeting_or_smalltalk": true}`,
		"hello again",
	}}
	s := newTestSupervisor(stub, nil)

	s.Process(context.Background(), "hi")
	firstSummary := stub.Calls[0].Prompt

	s.ResetMemory()
	s.Process(context.Background(), "hi again")
	postResetSummary := stub.Calls[2].Prompt

	assert.Contains(t, firstSummary, `"recent_messages":1`)
	assert.Contains(t, postResetSummary, `"recent_messages":1`,
		"post-reset routing must see no prior conversation")
}

func TestSupervisorMemoryRecordsBothSides(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{
		`{"route_to": "NONE", "is_greeting_or_smalltalk": true}`,
		"welcome",
	}}
	s := newTestSupervisor(stub, nil)

	s.Process(context.Background(), "hello")

	history := s.Memory().History(0)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "welcome", history[1].Content)
}
