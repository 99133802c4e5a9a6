// Package pipeline sequences the four stages of a turn: input guardrail,
// supervisor routing, context-isolated audit, output guardrail. The only
// hard stop is an input block; every other internal failure degrades to a
// safe reply.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"repsafe/pkg/guardrails"
	"repsafe/pkg/models"
)

// Router produces draft replies with full conversation context.
// *agents.Supervisor is the production implementation.
type Router interface {
	Process(ctx context.Context, userMessage string) *models.DraftResponse
	Memory() *models.ConversationMemory
	ResetMemory()
}

// Reviewer audits a draft in context isolation: it receives only the draft
// text. *auditor.Auditor is the production implementation.
type Reviewer interface {
	Audit(ctx context.Context, draft string) *models.DraftResponse
	FallbackText() string
}

const blockedReply = "I'm sorry, but I can't process that request. " +
	"Please rephrase your question and I'll be happy to help you " +
	"with orders, products, or general support."

// Config carries the pipeline knobs and monitoring callbacks.
type Config struct {
	// MaxRetries bounds audit-demanded redrafts. Zero is honored: the first
	// rejected draft goes straight to the fallback text. Defaulting lives in
	// pkg/config, not here.
	MaxRetries int
	// OnBlock fires when input is blocked (message, reason).
	OnBlock func(text, reason string)
	// OnFlag fires when input is flagged but processing continues.
	OnFlag func(text string, flags []string)
}

// Pipeline runs one session. Process calls on the same pipeline are
// serialized: the supervisor's memory has a single writer. Different
// sessions get their own pipelines and run fully concurrent.
type Pipeline struct {
	mu sync.Mutex

	sessionID  string
	input      *guardrails.InputGuardrail
	output     *guardrails.OutputGuardrail
	supervisor Router
	auditor    Reviewer
	cfg        Config
	logger     *zap.Logger
}

func New(input *guardrails.InputGuardrail, output *guardrails.OutputGuardrail, supervisor Router, aud Reviewer, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	sessionID := uuid.NewString()
	return &Pipeline{
		sessionID:  sessionID,
		input:      input,
		output:     output,
		supervisor: supervisor,
		auditor:    aud,
		cfg:        cfg,
		logger:     logger.With(zap.String("session_id", sessionID)),
	}
}

// SessionID identifies this pipeline's conversation session.
func (p *Pipeline) SessionID() string {
	return p.sessionID
}

// Process runs a user message through the full pipeline and always returns a
// result; failures surface as degraded-but-safe replies, never errors.
func (p *Pipeline) Process(ctx context.Context, userMessage string) *models.PipelineResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()

	inputVerdict := p.input.Check(userMessage)

	switch inputVerdict.Action {
	case models.ActionBlock:
		p.logger.Info("input blocked",
			zap.String("reason", inputVerdict.Reason),
			zap.String("input", guardrails.SanitizeForLogging(userMessage)))
		if p.cfg.OnBlock != nil {
			p.cfg.OnBlock(userMessage, inputVerdict.Reason)
		}
		return &models.PipelineResult{
			Response:     blockedReply,
			InputVerdict: inputVerdict,
			WasBlocked:   true,
			BlockReason:  inputVerdict.Reason,
			Latency:      time.Since(start),
		}
	case models.ActionFlag:
		p.logger.Info("input flagged", zap.Strings("flags", inputVerdict.Flags))
		if p.cfg.OnFlag != nil {
			p.cfg.OnFlag(userMessage, inputVerdict.Flags)
		}
	}

	routerDraft, auditedDraft, retries, exhausted := p.reviewLoop(ctx, userMessage)

	var finalContent string
	retriesUsed := retries
	if exhausted {
		finalContent = p.auditor.FallbackText()
		retriesUsed = p.cfg.MaxRetries
	} else {
		finalContent = auditedDraft.Content
	}

	outputVerdict := p.output.Check(finalContent)
	if outputVerdict.Action == models.ActionModify {
		finalContent = outputVerdict.ModifiedText
	}

	var agentsUsed []string
	if routerDraft != nil {
		if used, ok := routerDraft.Metadata["agents_used"].([]string); ok {
			agentsUsed = used
		}
	}

	return &models.PipelineResult{
		Response:      finalContent,
		InputVerdict:  inputVerdict,
		RouterDraft:   routerDraft,
		AuditorDraft:  auditedDraft,
		OutputVerdict: outputVerdict,
		RetriesUsed:   retriesUsed,
		AgentsUsed:    agentsUsed,
		Latency:       time.Since(start),
	}
}

// reviewLoop runs the bounded produce/review cycle. The auditor sees only
// the draft text, never userMessage. Exits with the accepted or corrected
// draft, or reports exhaustion after MaxRetries retries.
func (p *Pipeline) reviewLoop(ctx context.Context, userMessage string) (routerDraft, auditedDraft *models.DraftResponse, retries int, exhausted bool) {
	for {
		routerDraft = p.supervisor.Process(ctx, userMessage)
		auditedDraft = p.auditor.Audit(ctx, routerDraft.Content)

		if auditedDraft.Accepted {
			return routerDraft, auditedDraft, retries, false
		}

		requiresRetry, _ := auditedDraft.Metadata["requires_retry"].(bool)
		if !requiresRetry {
			// Corrections the auditor judges sufficient; no fresh draft needed.
			return routerDraft, auditedDraft, retries, false
		}

		retries++
		if retries > p.cfg.MaxRetries {
			p.logger.Warn("audit retries exhausted", zap.Int("retries", retries-1))
			return routerDraft, auditedDraft, retries, true
		}
		p.logger.Info("audit requested retry", zap.Int("retry", retries))
	}
}

// ResetConversation discards the session memory; subsequent calls start a
// fresh conversation.
func (p *Pipeline) ResetConversation() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.supervisor.ResetMemory()
	p.sessionID = uuid.NewString()
}

// ConversationHistory returns the ordered message log for the session.
func (p *Pipeline) ConversationHistory() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.supervisor.Memory().History(0)
}
