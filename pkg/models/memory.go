package models

import "sync"

// ConversationMemory holds the ordered message log and a small keyed fact
// store (last order id, last product id, last topic) for one session.
// It has a single writer, the supervisor owning the session; the mutex only
// guards against readers racing that writer.
type ConversationMemory struct {
	mu       sync.Mutex
	messages []Message
	facts    map[string]string
}

func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{facts: make(map[string]string)}
}

// AddMessage appends a turn to the log. Appended messages are never mutated.
func (m *ConversationMemory) AddMessage(role, content string, metadata map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Role: role, Content: content, Metadata: metadata})
}

// History returns up to maxTurns of recent exchanges (a turn is a user plus
// an assistant message). maxTurns <= 0 returns everything.
func (m *ConversationMemory) History(maxTurns int) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages
	if maxTurns > 0 && len(msgs) > maxTurns*2 {
		msgs = msgs[len(msgs)-maxTurns*2:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Len returns the number of stored messages.
func (m *ConversationMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// SetFact stores a named fact, overwriting any previous value for the key.
func (m *ConversationMemory) SetFact(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts[key] = value
}

// Fact returns the stored value for key, or "" if absent.
func (m *ConversationMemory) Fact(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.facts[key]
}

// Reset discards the full session state.
func (m *ConversationMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.facts = make(map[string]string)
}
