package engine

import (
	"context"
	"strings"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
)

// ChatWindow handles the multi-turn path: the client ships a rolling
// message window and the tenant persona answers it directly, with a
// short-lived reply cache in front of the generation call.
func (e *Engine) ChatWindow(ctx context.Context, req domain.ChatRequest) *domain.ChatResponse {
	tenant := kb.NormalizeTenant(firstNonEmpty(req.TenantID, req.KB))
	lang := normalizeLang(req.Lang)
	conversation := sanitizeMessages(req.Messages, req.Message, e.opts.WindowMax)
	lastUserMessage := findLastUserMessage(conversation)

	if lastUserMessage == "" {
		return domain.SimpleResponse(windowFallbackReply(tenant, lang))
	}

	cacheKey := tenant + "::" + lang + "::" + Normalize(lastUserMessage)
	if cached, ok := e.cache.Get(ctx, cacheKey); ok {
		return domain.SimpleResponse(cached)
	}

	profile := kb.ProfileFromItems(tenant, lang, e.kb.ListItems(tenant))
	reply, ok := e.llm.CompleteChat(ctx, personaSystemPrompt(profile, lang), conversation)
	if !ok || strings.TrimSpace(reply) == "" {
		reply = windowFallbackReply(tenant, lang)
	}

	e.cache.Set(ctx, cacheKey, reply)
	return domain.SimpleResponse(reply)
}

// sanitizeMessages normalizes roles, drops blank entries and keeps
// only the trailing maxMessages turns. A bare request message becomes
// a single user turn when the window is empty.
func sanitizeMessages(incoming []domain.ChatMessage, fallbackMessage string, maxMessages int) []domain.ChatMessage {
	normalized := make([]domain.ChatMessage, 0, len(incoming))
	for _, message := range incoming {
		content := strings.TrimSpace(message.Content)
		if content == "" {
			continue
		}
		normalized = append(normalized, domain.ChatMessage{Role: normalizeRole(message.Role), Content: content})
	}

	if len(normalized) == 0 {
		if fallback := strings.TrimSpace(fallbackMessage); fallback != "" {
			normalized = append(normalized, domain.ChatMessage{Role: "user", Content: fallback})
		}
	}

	if len(normalized) > maxMessages {
		normalized = normalized[len(normalized)-maxMessages:]
	}
	return normalized
}

func findLastUserMessage(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant":
		return "assistant"
	case "system":
		return "system"
	default:
		return "user"
	}
}

func windowFallbackReply(tenant, lang string) string {
	if lang == "en" {
		return "I can help with products, services and contact details for " + kb.DisplayName(tenant) + "."
	}
	return "Puedo ayudarte con productos, servicios y datos de contacto de " + kb.DisplayName(tenant) + "."
}
