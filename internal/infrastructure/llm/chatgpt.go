package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"LookupBot/internal/config"
	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
)

const maxReplyBytes = 1 << 20

// ChatGPTClient implements ports.ChatClient backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatClient = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.AssistantConfig) *ChatGPTClient {
	return &ChatGPTClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete posts the conversation and returns the first choice's content.
func (c *ChatGPTClient) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("empty conversation")
	}

	payload := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, chatMessage{Role: string(m.Role), Content: m.Text})
	}
	body, err := json.Marshal(map[string]any{
		"model":    c.model,
		"messages": payload,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send conversation: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw[:min(len(raw), 1024)]))
		}
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, msg)
	}

	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("chatgpt reply is not valid json")
	}
	content := strings.TrimSpace(gjson.GetBytes(raw, "choices.0.message.content").String())
	if content == "" {
		return "", fmt.Errorf("chatgpt reply has no content")
	}
	return content, nil
}
