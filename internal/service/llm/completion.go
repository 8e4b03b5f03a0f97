package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storyloom/internal/capabilities"
	domainllm "storyloom/internal/domain/services/llm"
)

// CompletionConfig holds the fixed parameters of the completion service
type CompletionConfig struct {
	DefaultModel string
	MaxTokens    int
	Timeout      time.Duration
}

type completionService struct {
	registry *ProviderRegistry
	caps     *capabilities.Registry
	config   CompletionConfig
	logger   *slog.Logger
}

// NewCompletionService creates the completion service
func NewCompletionService(
	registry *ProviderRegistry,
	caps *capabilities.Registry,
	cfg CompletionConfig,
	logger *slog.Logger,
) domainllm.CompletionService {
	return &completionService{
		registry: registry,
		caps:     caps,
		config:   cfg,
		logger:   logger,
	}
}

// Complete runs one prompt. The provider call is detached from ctx cancellation
// (an abandoned request still runs to completion) but always bounded by the
// configured timeout.
func (s *completionService) Complete(ctx context.Context, req *domainllm.CompletionRequest) *domainllm.CompletionResult {
	modelStr := req.Model
	if modelStr == "" {
		modelStr = s.config.DefaultModel
	}

	info, err := ParseModel(modelStr)
	if err != nil {
		return s.fail(modelStr, "", err)
	}

	provider, err := s.registry.GetProvider(info.Provider)
	if err != nil {
		return s.fail(info.Model, info.Provider, err)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.config.MaxTokens
	}
	if s.caps != nil {
		maxTokens = s.caps.ClampMaxTokens(info.Provider, info.Model, maxTokens)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := provider.GenerateResponse(callCtx, &domainllm.GenerateRequest{
		System:      req.System,
		Prompt:      req.Prompt,
		Model:       info.Model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("completion timed out",
				"provider", info.Provider,
				"model", info.Model,
				"timeout", s.config.Timeout,
			)
			return &domainllm.CompletionResult{
				Status:   domainllm.StatusTimeout,
				Model:    info.Model,
				Provider: info.Provider,
				Err:      fmt.Errorf("completion exceeded %s: %w", s.config.Timeout, err),
			}
		}
		return s.fail(info.Model, info.Provider, err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		s.logger.Warn("completion returned no text",
			"provider", info.Provider,
			"model", info.Model,
			"stop_reason", resp.StopReason,
		)
		return &domainllm.CompletionResult{
			Status:   domainllm.StatusEmpty,
			Model:    resp.Model,
			Provider: info.Provider,
		}
	}

	s.logger.Debug("completion finished",
		"provider", info.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &domainllm.CompletionResult{
		Status:   domainllm.StatusSuccess,
		Text:     resp.Text,
		Model:    resp.Model,
		Provider: info.Provider,
	}
}

func (s *completionService) fail(model, provider string, err error) *domainllm.CompletionResult {
	s.logger.Error("completion failed",
		"provider", provider,
		"model", model,
		"error", err,
	)
	return &domainllm.CompletionResult{
		Status:   domainllm.StatusFailure,
		Model:    model,
		Provider: provider,
		Err:      err,
	}
}
