package llm

import "context"

// LLMProvider defines the interface that all completion providers must implement.
type LLMProvider interface {
	// GenerateResponse performs one non-streaming completion
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "anthropic", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// GenerateRequest contains the parameters for a single-turn completion.
type GenerateRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// GenerateResponse contains the provider's response.
type GenerateResponse struct {
	Text         string
	Model        string // may differ from request if aliased
	InputTokens  int
	OutputTokens int
	StopReason   string
}
