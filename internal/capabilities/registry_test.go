package capabilities

import "testing"

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	providers := r.GetAllProviders()
	if len(providers) != 2 || providers[0] != "anthropic" || providers[1] != "lorem" {
		t.Errorf("unexpected providers %v", providers)
	}

	models, err := r.ListProviderModels("lorem")
	if err != nil {
		t.Fatalf("ListProviderModels() error = %v", err)
	}
	// YAML order is preserved
	if len(models) != 3 || models[0].ID != "lorem-fast" || models[2].ID != "lorem-empty" {
		t.Errorf("unexpected lorem models %+v", models)
	}
}

func TestGetModelCapabilities(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	caps, err := r.GetModelCapabilities("anthropic", "claude-haiku-4-5-20251001")
	if err != nil {
		t.Fatalf("GetModelCapabilities() error = %v", err)
	}
	if caps.MaxOutput != 64000 || caps.DisplayName == "" {
		t.Errorf("unexpected capabilities %+v", caps)
	}

	if _, err := r.GetModelCapabilities("anthropic", "claude-unknown"); err == nil {
		t.Error("expected error for unknown model")
	}
	if _, err := r.GetModelCapabilities("openai", "gpt-4"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestClampMaxTokens(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		provider  string
		model     string
		requested int
		want      int
	}{
		{"within limit", "lorem", "lorem-fast", 2048, 2048},
		{"above limit", "lorem", "lorem-fast", 100000, 8192},
		{"zero uses limit", "lorem", "lorem-fast", 0, 8192},
		{"unknown model passes through", "anthropic", "claude-next", 5000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ClampMaxTokens(tt.provider, tt.model, tt.requested); got != tt.want {
				t.Errorf("ClampMaxTokens() = %d, want %d", got, tt.want)
			}
		})
	}
}
