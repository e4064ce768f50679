package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
)

// scriptedClient answers every completion with a fixed reply and
// counts calls, so cache behavior is observable.
type scriptedClient struct {
	reply string
	calls int
}

func (c *scriptedClient) Enabled() bool { return true }

func (c *scriptedClient) Complete(context.Context, string, string) (string, bool) {
	c.calls++
	return c.reply, true
}

func (c *scriptedClient) CompleteChat(context.Context, string, []domain.ChatMessage) (string, bool) {
	c.calls++
	return c.reply, true
}

func (c *scriptedClient) Embed(context.Context, string) ([]float32, bool) { return nil, false }

func newWindowEngine(t *testing.T, client *scriptedClient) *Engine {
	t.Helper()
	store := kb.NewStore(testItems(), nil, zap.NewNop())
	sessions := NewSessionStore(0)
	t.Cleanup(sessions.Close)
	cache := NewReplyCache(nil, 45*time.Second, zap.NewNop())
	return New(store, client, sessions, cache, Options{MinRelevance: 0.12}, zap.NewNop())
}

func TestChatWindowUsesProviderReply(t *testing.T) {
	client := &scriptedClient{reply: "Tenemos varias opciones de vivienda."}
	eng := newWindowEngine(t, client)

	resp := eng.ChatWindow(context.Background(), domain.ChatRequest{
		TenantID: "A", Lang: "es",
		Messages: []domain.ChatMessage{
			{Role: "user", Content: "hola"},
			{Role: "assistant", Content: "hola, dime"},
			{Role: "user", Content: "que pisos teneis"},
		},
	})

	assert.Equal(t, "Tenemos varias opciones de vivienda.", resp.Reply)
	assert.Equal(t, 1, client.calls)
}

func TestChatWindowCachesByLastUserMessage(t *testing.T) {
	client := &scriptedClient{reply: "respuesta generada"}
	eng := newWindowEngine(t, client)
	ctx := context.Background()

	req := domain.ChatRequest{
		TenantID: "A", Lang: "es",
		Messages: []domain.ChatMessage{{Role: "user", Content: "¿Qué pisos tenéis?"}},
	}
	first := eng.ChatWindow(ctx, req)

	// Same question with different accents and casing hits the cache.
	req.Messages = []domain.ChatMessage{{Role: "user", Content: "que pisos teneis"}}
	second := eng.ChatWindow(ctx, req)

	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, 1, client.calls)
}

func TestChatWindowBlankConversationFallsBack(t *testing.T) {
	client := &scriptedClient{reply: "nunca usado"}
	eng := newWindowEngine(t, client)

	resp := eng.ChatWindow(context.Background(), domain.ChatRequest{
		TenantID: "B", Lang: "es",
		Messages: []domain.ChatMessage{{Role: "assistant", Content: "hola"}},
	})

	assert.Contains(t, resp.Reply, "LeadWave Growth Marketing")
	assert.Equal(t, 0, client.calls)
}

func TestChatWindowProviderFailureFallsBack(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.ChatWindow(context.Background(), domain.ChatRequest{
		TenantID: "C", Lang: "en",
		Messages: []domain.ChatMessage{{Role: "user", Content: "do you stock oil filters?"}},
	})

	assert.Contains(t, resp.Reply, "MotoRecambio Atlas")
}

func TestSanitizeMessages(t *testing.T) {
	messages := []domain.ChatMessage{
		{Role: "USER", Content: "  hola  "},
		{Role: "assistant", Content: ""},
		{Role: "bot", Content: "algo"},
		{Role: "system", Content: "regla"},
	}

	got := sanitizeMessages(messages, "", 8)

	require.Len(t, got, 3)
	assert.Equal(t, domain.ChatMessage{Role: "user", Content: "hola"}, got[0])
	assert.Equal(t, "user", got[1].Role)
	assert.Equal(t, "system", got[2].Role)
}

func TestSanitizeMessagesWindowCap(t *testing.T) {
	var messages []domain.ChatMessage
	for i := 0; i < 12; i++ {
		messages = append(messages, domain.ChatMessage{Role: "user", Content: "m"})
	}

	got := sanitizeMessages(messages, "", 8)
	assert.Len(t, got, 8)
}

func TestSanitizeMessagesFallbackMessage(t *testing.T) {
	got := sanitizeMessages(nil, "hola", 8)

	require.Len(t, got, 1)
	assert.Equal(t, domain.ChatMessage{Role: "user", Content: "hola"}, got[0])
}

func TestFindLastUserMessage(t *testing.T) {
	messages := []domain.ChatMessage{
		{Role: "user", Content: "primera"},
		{Role: "assistant", Content: "respuesta"},
		{Role: "user", Content: "segunda"},
		{Role: "assistant", Content: "otra"},
	}
	assert.Equal(t, "segunda", findLastUserMessage(messages))
	assert.Equal(t, "", findLastUserMessage(nil))
}
