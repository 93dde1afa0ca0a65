package provider

import (
	"context"
	"sync"
)

// MockCompleter is a Completer that returns a canned response and records
// what it was asked. It is safe for concurrent use.
type MockCompleter struct {
	Response  string
	Error     error
	ModelName string

	mu         sync.Mutex
	lastPrompt string
	calls      int
}

func (m *MockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt = prompt
	return m.Response, m.Error
}

func (m *MockCompleter) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Calls reports how many times Complete ran.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompt returns the prompt of the most recent Complete call.
func (m *MockCompleter) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}
