package ai

//go:generate mockgen -source=ai.go -destination=../../mocks/ai.go -package=mocks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"aichat-backend/internal/model"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Client produces one model reply for an ordered message history.
type Client interface {
	Complete(ctx context.Context, messages []model.Message) (string, error)
}

type Config struct {
	Provider     string
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string
	Timeout      time.Duration
}

func New(cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("llm base url and model are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(httpClient, cfg), nil
	case ProviderOpenAI:
		return NewOpenAICompatibleClient(httpClient, cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

type instrumented struct {
	next     Client
	provider string
	calls    *prometheus.CounterVec
}

// Instrument counts every call to c by outcome ("ok" or "error").
func Instrument(c Client, provider string, calls *prometheus.CounterVec) Client {
	if calls == nil {
		return c
	}
	return &instrumented{next: c, provider: provider, calls: calls}
}

func (i *instrumented) Complete(ctx context.Context, messages []model.Message) (string, error) {
	reply, err := i.next.Complete(ctx, messages)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.calls.WithLabelValues(i.provider, outcome).Inc()
	return reply, err
}
