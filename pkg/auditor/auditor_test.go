package auditor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repsafe/pkg/llm"
)

const cleanDraft = "Thanks for reaching out! Your order is on its way and should arrive within 3-5 business days."

func newAuditor(stub *llm.StubGenerator, cfg Config) *Auditor {
	return New(stub, nil, cfg, zap.NewNop())
}

func TestLightweightAuditAcceptsCleanDraft(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{`{"is_ok": true}`}}
	a := newAuditor(stub, DefaultConfig())

	result := a.Audit(context.Background(), cleanDraft)

	assert.True(t, result.Accepted)
	assert.Equal(t, cleanDraft, result.Content)
	assert.Equal(t, "lightweight", result.Metadata["audit_type"])
	assert.Equal(t, 1, stub.CallCount())
}

func TestLightweightAuditEscalatesCarryingIssue(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{
		`{"is_ok": false, "issue": "tone is dismissive"}`,
		`{"is_acceptable": false, "corrected_response": "A kinder version.", "issues_found": ["tone"], "requires_retry": false}`,
	}}
	a := newAuditor(stub, DefaultConfig())

	result := a.Audit(context.Background(), cleanDraft)

	require.Equal(t, 2, stub.CallCount())
	assert.Contains(t, stub.Calls[1].Prompt, "tone is dismissive")
	assert.False(t, result.Accepted)
	assert.Equal(t, "A kinder version.", result.Content)
	assert.Equal(t, "full", result.Metadata["audit_type"])
	assert.Equal(t, false, result.Metadata["requires_retry"])
}

func TestPrecheckViolationSkipsLightweightPath(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{
		`{"is_acceptable": false, "corrected_response": "We will do our best to help.", "requires_retry": false}`,
	}}
	a := newAuditor(stub, DefaultConfig())

	draft := "Don't worry, we guarantee your package arrives tomorrow without fail."
	result := a.Audit(context.Background(), draft)

	require.Equal(t, 1, stub.CallCount())
	assert.Contains(t, stub.Calls[0].Prompt, "QUALITY RUBRIC")
	assert.Contains(t, stub.Calls[0].Prompt, "Contains forbidden promise: 'we guarantee'")
	assert.Equal(t, "We will do our best to help.", result.Content)
}

func TestLongDraftGoesToFullAudit(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{
		`{"is_acceptable": true, "corrected_response": "", "requires_retry": false}`,
	}}
	a := newAuditor(stub, Config{LightweightBelow: 50, FailOpen: true})

	draft := strings.Repeat("All good here. ", 10)
	result := a.Audit(context.Background(), draft)

	assert.Equal(t, "full", result.Metadata["audit_type"])
	// Empty corrected_response means keep the draft.
	assert.Equal(t, draft, result.Content)
	assert.True(t, result.Accepted)
}

func TestRetryDemandOverridesAcceptable(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{
		`{"is_ok": false, "issue": "broken"}`,
		`{"is_acceptable": true, "corrected_response": "ok", "requires_retry": true}`,
	}}
	a := newAuditor(stub, DefaultConfig())

	result := a.Audit(context.Background(), cleanDraft)

	assert.False(t, result.Accepted)
	assert.Equal(t, true, result.Metadata["requires_retry"])
}

func TestUnparsableReviewFailsOpen(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{"I simply cannot answer in JSON today"}}
	a := newAuditor(stub, DefaultConfig())

	result := a.Audit(context.Background(), cleanDraft)

	assert.True(t, result.Accepted)
	assert.Equal(t, cleanDraft, result.Content)
	assert.Contains(t, result.Issues, "Audit parse error - using original")
}

func TestGeneratorErrorFailsOpen(t *testing.T) {
	stub := &llm.StubGenerator{Err: assert.AnError}
	a := newAuditor(stub, DefaultConfig())

	result := a.Audit(context.Background(), cleanDraft)

	assert.True(t, result.Accepted)
	assert.Equal(t, cleanDraft, result.Content)
}

func TestFailClosedDemandsRetry(t *testing.T) {
	stub := &llm.StubGenerator{Responses: []string{"garbage"}}
	a := newAuditor(stub, Config{FailOpen: false})

	result := a.Audit(context.Background(), cleanDraft)

	assert.False(t, result.Accepted)
	assert.Equal(t, true, result.Metadata["requires_retry"])
	assert.Equal(t, cleanDraft, result.Content)
}

func TestPrecheckCollectsAllViolations(t *testing.T) {
	r := DefaultRubric()

	issues := r.precheck("short")
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0], "too short")

	issues = r.precheck("I promise you're wrong about this, and frankly I don't care at all.")
	assert.Len(t, issues, 3)

	issues = r.precheck(strings.Repeat("x", 1501))
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0], "too long")

	assert.Empty(t, r.precheck(cleanDraft))
}

func TestFallbackTextIsStable(t *testing.T) {
	a := newAuditor(&llm.StubGenerator{}, DefaultConfig())
	assert.Equal(t, a.FallbackText(), a.FallbackText())
	assert.Contains(t, a.FallbackText(), "I apologize")
}
