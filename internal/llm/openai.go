package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// OpenAIClient talks to the OpenAI chat-completions and embeddings
// endpoints (or any API-compatible server via BaseURL).
type OpenAIClient struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	temperature    float64
	httpClient     *http.Client
	logger         *zap.Logger
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient builds the client; opts.APIKey must be non-empty.
func NewOpenAIClient(opts Options, logger *zap.Logger) *OpenAIClient {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	temperature := opts.Temperature
	if temperature < 0 {
		temperature = 0
	} else if temperature > 2 {
		temperature = 2
	}
	return &OpenAIClient{
		baseURL:        baseURL,
		apiKey:         opts.APIKey,
		chatModel:      opts.ChatModel,
		embeddingModel: opts.EmbeddingModel,
		temperature:    temperature,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

func (c *OpenAIClient) Enabled() bool { return c.apiKey != "" }

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, bool) {
	return c.chat(ctx, systemPrompt, []domain.ChatMessage{{Role: "user", Content: userPrompt}})
}

func (c *OpenAIClient) CompleteChat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, bool) {
	return c.chat(ctx, systemPrompt, messages)
}

func (c *OpenAIClient) chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, bool) {
	if !c.Enabled() || len(messages) == 0 {
		return "", false
	}

	payload := chatRequest{
		Model:       c.chatModel,
		Temperature: c.temperature,
		Messages:    make([]chatMessage, 0, len(messages)+1),
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, ok := c.post(ctx, "/chat/completions", payload)
	if !ok {
		return "", false
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("openai chat response unmarshal failed", zap.Error(err))
		return "", false
	}
	if len(parsed.Choices) == 0 {
		return "", false
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", false
	}
	return content, true
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, bool) {
	if !c.Enabled() || strings.TrimSpace(text) == "" {
		return nil, false
	}

	body, ok := c.post(ctx, "/embeddings", embeddingRequest{Model: c.embeddingModel, Input: text})
	if !ok {
		return nil, false
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("openai embedding response unmarshal failed", zap.Error(err))
		return nil, false
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, false
	}
	return parsed.Data[0].Embedding, true
}

// post performs a single attempt, no retries: a failure here always
// resolves to the deterministic fallback upstream.
func (c *OpenAIClient) post(ctx context.Context, path string, payload any) ([]byte, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("openai request marshal failed", zap.Error(err))
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		c.logger.Warn("openai request build failed", zap.Error(err))
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("openai request failed", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("openai non-success status",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("openai response read failed", zap.Error(err))
		return nil, false
	}
	return body, true
}
