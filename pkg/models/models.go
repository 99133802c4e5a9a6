package models

import "time"

// AgentType identifies which part of the system produced a response.
type AgentType string

const (
	AgentSupervisor AgentType = "supervisor"
	AgentOrder      AgentType = "order_agent"
	AgentProduct    AgentType = "product_agent"
	AgentSupport    AgentType = "support_agent"
	AgentAuditor    AgentType = "auditor"
)

// GuardrailAction is the outcome of a guardrail check.
type GuardrailAction string

const (
	ActionAllow  GuardrailAction = "allow"
	ActionBlock  GuardrailAction = "block"
	ActionModify GuardrailAction = "modify"
	ActionFlag   GuardrailAction = "flag"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Immutable once appended to memory.
type Message struct {
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ToolCall is an audit record of one domain tool invocation, not a live handle.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    any            `json:"result,omitempty"`
}

// GuardrailVerdict is produced fresh by every guardrail check and never
// mutated afterwards. ModifiedText is set iff Action == ActionModify.
type GuardrailVerdict struct {
	Action       GuardrailAction `json:"action"`
	OriginalText string          `json:"original_text"`
	ModifiedText string          `json:"modified_text,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	Flags        []string        `json:"flags,omitempty"`
}

// HasFlag reports whether the verdict carries the given flag.
func (v *GuardrailVerdict) HasFlag(flag string) bool {
	for _, f := range v.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// DraftResponse is a not-yet-delivered reply from an agent.
// Accepted == false means the reviewing stage rejected it.
type DraftResponse struct {
	Content   string         `json:"content"`
	Agent     AgentType      `json:"agent"`
	ToolCalls []ToolCall     `json:"tool_calls,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Accepted  bool           `json:"accepted"`
	Issues    []string       `json:"issues,omitempty"`
}

// PipelineResult is the full record of one processed message.
type PipelineResult struct {
	Response string `json:"response"`

	InputVerdict  *GuardrailVerdict `json:"input_verdict,omitempty"`
	RouterDraft   *DraftResponse    `json:"router_draft,omitempty"`
	AuditorDraft  *DraftResponse    `json:"auditor_draft,omitempty"`
	OutputVerdict *GuardrailVerdict `json:"output_verdict,omitempty"`

	WasBlocked  bool          `json:"was_blocked"`
	BlockReason string        `json:"block_reason,omitempty"`
	RetriesUsed int           `json:"retries_used"`
	AgentsUsed  []string      `json:"agents_used,omitempty"`
	Latency     time.Duration `json:"latency"`
}
