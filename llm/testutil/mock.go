// Package testutil provides test utilities for the llm package.
// It includes mock implementations for testing completion client
// interactions without a live provider.
package testutil

import (
	"context"
	"sync"

	"github.com/c360studio/grompt/llm"
)

// MockCompletionClient is a thread-safe mock completion client.
// It captures the requests passed to Complete() and returns configured
// responses in sequence.
//
// Usage:
//
//	// Single response mock
//	mock := &MockCompletionClient{
//	    Responses: []*llm.Response{
//	        {Content: "optimized text", Model: "test-model"},
//	    },
//	}
//
//	// Error response
//	mock := &MockCompletionClient{
//	    Err: errors.New("connection failed"),
//	}
type MockCompletionClient struct {
	mu               sync.Mutex
	capturedRequests []llm.Request
	Responses        []*llm.Response // Responses to return in sequence
	Err              error           // Error to return (takes precedence over Responses)
	callCount        int
	responseIndex    int
}

// Complete implements llm.CompletionClient.
// Returns the next response from Responses, or Err if set.
// Captures the request for verification in tests.
func (m *MockCompletionClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.capturedRequests = append(m.capturedRequests, req)
	m.callCount++

	if m.Err != nil {
		return nil, m.Err
	}

	if m.responseIndex < len(m.Responses) {
		resp := m.Responses[m.responseIndex]
		m.responseIndex++
		return resp, nil
	}

	// Default response if no responses configured
	return &llm.Response{Content: "", Model: "test-model"}, nil
}

// LastRequest returns the most recent request passed to Complete(),
// or a zero request if none were made.
func (m *MockCompletionClient) LastRequest() llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.capturedRequests) == 0 {
		return llm.Request{}
	}
	return m.capturedRequests[len(m.capturedRequests)-1]
}

// GetCallCount returns the number of times Complete() was called.
func (m *MockCompletionClient) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset resets the mock's state (call count, captures and response index).
func (m *MockCompletionClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.responseIndex = 0
	m.capturedRequests = nil
}
