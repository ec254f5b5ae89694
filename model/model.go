package model

import (
	"context"
	"fmt"
)

// Request captures one normalized capability call.
type Request struct {
	// Instructions is the system-level steering text for the call.
	Instructions string `json:"instructions"`
	// Input is the user-supplied content (transcript, structured findings).
	Input string `json:"input"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed capability output.
type Response struct {
	Text  string      `json:"text"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "bedrock", etc.
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are matched on the request input; unmatched inputs yield a
// deterministic echo so tests never depend on registration order.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
	calls     int
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *MockModel) AddResponse(input, response string) { m.responses[input] = response }

// FailWith makes every Complete call return the given error.
func (m *MockModel) FailWith(err error) { m.err = err }

// Calls returns the number of Complete invocations observed.
func (m *MockModel) Calls() int { return m.calls }

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (Response, error) {
	m.calls++
	if m.err != nil {
		return Response{}, m.err
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if full, ok := m.responses[req.Input]; ok {
		return Response{Text: full}, nil
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", req.Input)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
