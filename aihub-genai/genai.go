// Package aihubgenai streams chat completions from the supported model
// providers behind a single interface.
package aihubgenai

import "context"

// Role identifies who authored a conversation turn. The values match what the
// chat history table stores.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Turn is one prior message in a conversation.
type Turn struct {
	Role    Role
	Content string
}

// Request is a single chat completion request.
type Request struct {
	System      string
	History     []Turn
	Input       string
	MaxTokens   int64
	Temperature float64
}

// StreamFunc receives each response delta as the model produces it.
type StreamFunc func(delta string) error

// Provider streams a model response, returning the full response text once
// the stream completes.
type Provider interface {
	Stream(ctx context.Context, req Request, fn StreamFunc) (string, error)
}
