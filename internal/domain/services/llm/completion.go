package llm

import "context"

// CompletionStatus classifies the outcome of a completion call
type CompletionStatus string

const (
	StatusSuccess CompletionStatus = "success"
	StatusEmpty   CompletionStatus = "empty"   // provider answered with no usable text
	StatusFailure CompletionStatus = "failure" // provider error
	StatusTimeout CompletionStatus = "timeout"
)

// CompletionRequest is one prompt for the completion service.
// Zero MaxTokens and empty Model fall back to configured defaults.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// CompletionResult is the typed outcome. Text is set only for StatusSuccess;
// Err is set for StatusFailure and StatusTimeout.
type CompletionResult struct {
	Status   CompletionStatus
	Text     string
	Model    string
	Provider string
	Err      error
}

// OK reports whether the result carries usable text
func (r *CompletionResult) OK() bool {
	return r.Status == StatusSuccess
}

// CompletionService runs prompts against the configured provider with a fixed
// timeout. It never retries. Cancellation of ctx does not abort the provider call.
type CompletionService interface {
	Complete(ctx context.Context, req *CompletionRequest) *CompletionResult
}
