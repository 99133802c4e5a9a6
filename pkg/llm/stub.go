package llm

import (
	"context"
	"sync"
)

// StubGenerator is a deterministic Generator for tests. It replays canned
// responses in order, repeating the last one once exhausted, and records
// every request it sees.
type StubGenerator struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Calls     []Request
	next      int
}

func (s *StubGenerator) Generate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, req)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	i := s.next
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	s.next++
	return s.Responses[i], nil
}

// CallCount returns how many generate calls the stub has served.
func (s *StubGenerator) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
