package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/nebulasur/ventia/internal/domain"
)

// GeminiClient adapts Google's Gemini models to the Client contract.
type GeminiClient struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	temperature    float32
	logger         *zap.Logger
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(opts Options, logger *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{
		client:         client,
		chatModel:      opts.ChatModel,
		embeddingModel: opts.EmbeddingModel,
		temperature:    float32(opts.Temperature),
		logger:         logger,
	}, nil
}

func (c *GeminiClient) Enabled() bool { return c.client != nil }

// Close releases the underlying gRPC connection.
func (c *GeminiClient) Close() error { return c.client.Close() }

func (c *GeminiClient) model(systemPrompt string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.chatModel)
	model.SetTemperature(c.temperature)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	return model
}

func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, bool) {
	resp, err := c.model(systemPrompt).GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		c.logger.Warn("gemini completion failed", zap.Error(err))
		return "", false
	}
	return geminiText(resp)
}

func (c *GeminiClient) CompleteChat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, bool) {
	if len(messages) == 0 {
		return "", false
	}

	chat := c.model(systemPrompt).StartChat()
	for _, m := range messages[:len(messages)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(messages[len(messages)-1].Content))
	if err != nil {
		c.logger.Warn("gemini chat failed", zap.Error(err))
		return "", false
	}
	return geminiText(resp)
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	resp, err := c.client.EmbeddingModel(c.embeddingModel).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		c.logger.Warn("gemini embedding failed", zap.Error(err))
		return nil, false
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, false
	}
	return resp.Embedding.Values, true
}

func geminiText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", false
	}
	return content, true
}
