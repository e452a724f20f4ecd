package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aichat-backend/internal/model"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAICompatibleClient talks to any /chat/completions endpoint.
type OpenAICompatibleClient struct {
	httpClient *http.Client
	cfg        Config
}

func NewOpenAICompatibleClient(httpClient *http.Client, cfg Config) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{httpClient: httpClient, cfg: cfg}
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []model.Message) (string, error) {
	chat := make([]chatMessage, 0, len(messages)+1)
	if prompt := strings.TrimSpace(c.cfg.SystemPrompt); prompt != "" {
		chat = append(chat, chatMessage{Role: "system", Content: prompt})
	}
	for _, m := range messages {
		role := m.Role
		if role == model.RoleModel {
			role = "assistant"
		}
		chat = append(chat, chatMessage{Role: role, Content: m.Text})
	}

	reqBody := map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": chat,
		"stream":   false,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
