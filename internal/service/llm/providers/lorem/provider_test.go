package lorem

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	domainllm "storyloom/internal/domain/services/llm"
)

func TestGenerateResponseShapes(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	tests := []struct {
		name   string
		system string
		check  func(t *testing.T, text string)
	}{
		{
			name:   "outline",
			system: "Return <section><title>Chapter title</title><notes>...</notes></section>",
			check: func(t *testing.T, text string) {
				if strings.Count(text, "<section>") != 5 || strings.Count(text, "</section>") != 5 {
					t.Errorf("expected 5 sections, got %q", text)
				}
			},
		},
		{
			name:   "analysis json",
			system: `Respond with {"summary": "...", "overall": <0-10>}`,
			check: func(t *testing.T, text string) {
				var v map[string]interface{}
				if err := json.Unmarshal([]byte(text), &v); err != nil {
					t.Fatalf("not JSON: %v", err)
				}
				if _, ok := v["clarity"]; !ok {
					t.Errorf("missing clarity: %v", v)
				}
			},
		},
		{
			name:   "suggestions",
			system: "Offer exactly 3 distinct alternatives separated by |||",
			check: func(t *testing.T, text string) {
				if strings.Count(text, "|||") != 2 {
					t.Errorf("expected 3 parts, got %q", text)
				}
			},
		},
		{
			name:   "plain",
			system: "Continue the story",
			check: func(t *testing.T, text string) {
				if strings.TrimSpace(text) == "" {
					t.Error("expected text")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := p.GenerateResponse(ctx, &domainllm.GenerateRequest{
				Model:  "lorem-fast",
				System: tt.system,
				Prompt: "hello",
			})
			if err != nil {
				t.Fatalf("GenerateResponse() error = %v", err)
			}
			tt.check(t, resp.Text)
		})
	}
}

func TestGenerateResponseEmptyModel(t *testing.T) {
	resp, err := NewProvider().GenerateResponse(context.Background(), &domainllm.GenerateRequest{Model: "lorem-empty"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty text, got %q", resp.Text)
	}
}

func TestGenerateResponseSlowHonorsContext(t *testing.T) {
	p := NewProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.GenerateResponse(ctx, &domainllm.GenerateRequest{Model: "lorem-slow"})
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestUnsupportedModel(t *testing.T) {
	if _, err := NewProvider().GenerateResponse(context.Background(), &domainllm.GenerateRequest{Model: "claude-haiku-4-5"}); err == nil {
		t.Error("expected error for non-lorem model")
	}
}

func TestGenerateResponseChapterHTML(t *testing.T) {
	resp, err := NewProvider().GenerateResponse(context.Background(), &domainllm.GenerateRequest{
		Model:  "lorem-fast",
		System: "Full outline:\n<section><title>A</title><notes>a</notes></section>\nWrite the chapter as HTML using only <h2>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.Text, "<h2>") || strings.Contains(resp.Text, "<section>") {
		t.Errorf("expected chapter HTML, got %q", resp.Text)
	}
}
