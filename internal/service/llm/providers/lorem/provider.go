package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"

	domainllm "storyloom/internal/domain/services/llm"
)

// Provider is a mock completion provider that generates lorem ipsum text.
// Used for testing and development without requiring real API keys.
//
// The answer follows the format the system prompt asks for, so every route
// works offline: outline tags, JSON analysis, or separated alternatives.
//
// Models:
//   - lorem-fast: answers immediately
//   - lorem-slow: waits 10 seconds first (or until ctx is done)
//   - lorem-empty: answers with no text
type Provider struct {
	mu        sync.Mutex
	generator *loremgen.Lorem
	slowDelay time.Duration
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
		slowDelay: 10 * time.Second,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// GenerateResponse generates a complete lorem ipsum response.
func (p *Provider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	// Validate model
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	if strings.Contains(req.Model, "slow") {
		select {
		case <-time.After(p.slowDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var text string
	if !strings.Contains(req.Model, "empty") {
		text = p.generateFor(req.System)
	}

	return &domainllm.GenerateResponse{
		Text:         text,
		Model:        req.Model,
		InputTokens:  len(strings.Fields(req.System)) + len(strings.Fields(req.Prompt)),
		OutputTokens: len(strings.Fields(text)),
		StopReason:   "end_turn",
	}, nil
}

// generateFor picks an output shape from markers in the system prompt
func (p *Provider) generateFor(system string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case strings.Contains(system, "as HTML"):
		return "<h2>" + p.generator.Sentence(3, 6) + "</h2><p>" + p.paragraph() + "</p><p>" + p.paragraph() + "</p>"
	case strings.Contains(system, "<section><title>"):
		return p.outline(5)
	case strings.Contains(system, `"overall"`):
		return p.analysis()
	case strings.Contains(system, "|||"):
		return strings.Join([]string{p.paragraph(), p.paragraph(), p.paragraph()}, " ||| ")
	default:
		return p.paragraph()
	}
}

func (p *Provider) paragraph() string {
	return p.generator.Paragraph(3, 5)
}

func (p *Provider) outline(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<section><title>%s</title><notes>%s</notes></section>\n",
			strings.TrimSuffix(p.generator.Sentence(2, 5), "."),
			p.generator.Sentence(8, 15))
	}
	return sb.String()
}

func (p *Provider) analysis() string {
	type criterion struct {
		Feedback string `json:"feedback"`
		Score    int    `json:"score"`
	}

	result := map[string]interface{}{
		"summary": p.generator.Sentence(12, 20),
		"overall": 7,
	}
	for i, name := range []string{"clarity", "pacing", "characterization", "dialogue", "prose"} {
		result[name] = criterion{Feedback: p.generator.Sentence(8, 14), Score: 5 + i%4}
	}

	data, _ := json.Marshal(result)
	return string(data)
}
