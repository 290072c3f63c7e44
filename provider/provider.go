// Package provider implements the unified LLM adapter: a single
// Complete(request) operation backed by either of two wire dialects
// (block-structured or message/tool-calls), grounded on the original
// Rust pixelcore-claw client and types.
package provider

import (
	"context"

	"github.com/pixelswarm/swarm/message"
)

// Request is the dialect-independent shape every Client accepts.
type Request struct {
	Model       string
	MaxTokens   int
	Messages    []message.Message
	System      string // empty means "no system prompt"
	Tools       []Tool
	Temperature float32
}

// Tool is a provider-facing tool descriptor, translated from a
// skill.Descriptor by the caller.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Response is the dialect-independent shape every Client returns.
type Response struct {
	ID         string
	Model      string
	StopReason string // empty if the provider did not report one
	Content    []message.ContentBlock
	Usage      Usage
}

// Usage reports token accounting for one Complete call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Client is the unified LLM adapter contract. Both dialects implement
// this same interface so the agent turn loop never branches on dialect.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
