package mesa

import "context"

// Provider is a strategy pattern interface for language model backends.
// Chat sends the full request and blocks until one assistant message is
// available. Retries, if any, are the provider's own policy.
type Provider interface {
	Chat(ctx context.Context, req Request) (AssistantMessage, error)
}

// Request carries the rendered system instruction, the message sequence,
// and the tools bound for this invocation. A request with no tools is a
// plain text generation (used for summarization).
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Event
	Tools        []Tool
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
