// Package ai wraps the chat-completion clients used by LLM-backed
// detectors: a live Azure OpenAI client and a record/replay client that
// reproduces responses bit-identically for deterministic runs.
package ai

import "context"

// ChatOptions tune a single completion call.
type ChatOptions struct {
	MaxTokens   int32
	Temperature float32
}

// Client is the minimal chat contract the pipeline depends on. A call may
// fail; the caller decides whether failure degrades or propagates.
type Client interface {
	Chat(ctx context.Context, prompt string, opts *ChatOptions) (string, error)
}
