package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newStubClient(t *testing.T, srv *httptest.Server) *OpenAIClient {
	t.Helper()
	return NewOpenAIClient(Options{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		ChatModel: "gpt-4o-mini",
	}, zap.NewNop())
}

func TestOpenAIComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  respuesta  "}},
			},
		})
	})

	client := newStubClient(t, srv)
	reply, ok := client.Complete(context.Background(), "sistema", "pregunta")

	require.True(t, ok)
	assert.Equal(t, "respuesta", reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "sistema", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
}

func TestOpenAICompleteChatKeepsHistory(t *testing.T) {
	var gotReq chatRequest
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	})

	client := newStubClient(t, srv)
	history := []domain.ChatMessage{
		{Role: "user", Content: "hola"},
		{Role: "assistant", Content: "dime"},
		{Role: "user", Content: "precios"},
	}
	_, ok := client.CompleteChat(context.Background(), "sistema", history)

	require.True(t, ok)
	require.Len(t, gotReq.Messages, 4)
	assert.Equal(t, "assistant", gotReq.Messages[2].Role)
}

func TestOpenAICompleteFailuresReportNotOK(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := newStubServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, ok := newStubClient(t, srv).Complete(context.Background(), "s", "u")
		assert.False(t, ok)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newStubServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})
		_, ok := newStubClient(t, srv).Complete(context.Background(), "s", "u")
		assert.False(t, ok)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newStubServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		})
		_, ok := newStubClient(t, srv).Complete(context.Background(), "s", "u")
		assert.False(t, ok)
	})

	t.Run("blank content", func(t *testing.T) {
		srv := newStubServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"content": "   "}}},
			})
		})
		_, ok := newStubClient(t, srv).Complete(context.Background(), "s", "u")
		assert.False(t, ok)
	})
}

func TestOpenAIEmbed(t *testing.T) {
	srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	})

	vec, ok := newStubClient(t, srv).Embed(context.Background(), "texto")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOpenAIEmbedBlankText(t *testing.T) {
	srv := newStubServer(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})

	_, ok := newStubClient(t, srv).Embed(context.Background(), "   ")
	assert.False(t, ok)
}

func TestNewFactorySelection(t *testing.T) {
	logger := zap.NewNop()

	client, err := New(Options{Provider: "none"}, logger)
	require.NoError(t, err)
	assert.False(t, client.Enabled())

	client, err = New(Options{Provider: "openai", APIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)

	_, err = New(Options{Provider: "watson", APIKey: "k"}, logger)
	assert.Error(t, err)
}
