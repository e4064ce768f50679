package engine

import (
	"strings"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
)

// BuildSystemPrompt returns the instruction block for single-shot
// generation over retrieved context.
func BuildSystemPrompt(lang string) string {
	if lang == "en" {
		return "You are a professional sales assistant for a business.\n" +
			"Answer using ONLY the provided context. If the context is not enough, say it and offer human follow-up.\n" +
			"Be concrete, warm and brief. Never invent prices, stock or data outside the context.\n" +
			"Answer in English."
	}
	return "Eres una asistente comercial profesional de una empresa.\n" +
		"Responde usando SOLO el contexto proporcionado. Si el contexto no alcanza, dilo y ofrece seguimiento humano.\n" +
		"Se concreta, cercana y breve. Nunca inventes precios, stock ni datos fuera del contexto.\n" +
		"Responde en espanol."
}

// BuildUserPrompt assembles the user turn: message, cart state,
// executed actions, the handoff specialist and retrieved context
// blocks.
func BuildUserPrompt(lang, tenant, message string, cart []domain.CartEntry, actions []domain.ChatAction, kbContext string) string {
	var b strings.Builder
	if lang == "en" {
		b.WriteString("Business: " + kb.DisplayName(tenant) + "\n")
		b.WriteString("User message: " + message + "\n")
		b.WriteString("Current cart: " + cartSummary(cart) + "\n")
		if len(actions) > 0 {
			b.WriteString("Actions already executed this turn: " + actionSummary(actions) + "\n")
			b.WriteString("Acknowledge those actions naturally in the reply.\n")
		}
		b.WriteString("Assigned specialist for handoff: " + kb.HumanContact(tenant, lang) + "\n")
		b.WriteString("Context:\n" + kbContext)
	} else {
		b.WriteString("Negocio: " + kb.DisplayName(tenant) + "\n")
		b.WriteString("Mensaje del usuario: " + message + "\n")
		b.WriteString("Carrito actual: " + cartSummary(cart) + "\n")
		if len(actions) > 0 {
			b.WriteString("Acciones ya ejecutadas en este turno: " + actionSummary(actions) + "\n")
			b.WriteString("Reconoce esas acciones con naturalidad en la respuesta.\n")
		}
		b.WriteString("Especialista asignado para derivacion: " + kb.HumanContact(tenant, lang) + "\n")
		b.WriteString("Contexto:\n" + kbContext)
	}
	return b.String()
}

func actionSummary(actions []domain.ChatAction) string {
	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		if action.ItemID != "" {
			parts = append(parts, action.Type+"("+action.ItemID+")")
		} else {
			parts = append(parts, action.Type)
		}
	}
	return strings.Join(parts, ", ")
}

// personaSystemPrompt builds the system instruction for the windowed
// conversation path from the tenant persona.
func personaSystemPrompt(profile kb.TenantProfile, lang string) string {
	if lang == "en" {
		return strings.Join([]string{
			"You are the demo assistant of " + profile.Company + ".",
			"Persona: " + profile.AgentName + " | Sector: " + profile.Sector + ".",
			"Capabilities: " + strings.Join(profile.Capabilities, ", ") + ".",
			"Contact facts: address=" + profile.Address + ", schedule=" + profile.Schedule + ", phone=" + profile.Phone + ", email=" + profile.Email + ".",
			"Rules:",
			"- Keep answers short, concrete and practical.",
			"- If asked for contact/address/schedule/phone/email, answer directly with facts.",
			"- If asked about privacy, answer neutral and short.",
			"- If off-topic, politely redirect to this company scope.",
			"- Do not suggest plans/packages unless the user explicitly asks for price, services or plans.",
			"- Do not invent data.",
		}, "\n")
	}
	return strings.Join([]string{
		"Eres la asistente de demo de " + profile.Company + ".",
		"Persona: " + profile.AgentName + " | Sector: " + profile.Sector + ".",
		"Capacidades: " + strings.Join(profile.Capabilities, ", ") + ".",
		"Datos fijos: direccion=" + profile.Address + ", horario=" + profile.Schedule + ", telefono=" + profile.Phone + ", email=" + profile.Email + ".",
		"Reglas:",
		"- Responde corto, concreto y util.",
		"- Si preguntan contacto/direccion/horario/telefono/email, responde directo con esos datos.",
		"- Si preguntan privacidad, respuesta corta y neutra.",
		"- Si es fuera de tema, redirige al alcance de la empresa.",
		"- No sugieras paquetes/planes salvo que pidan precio, servicios o planes.",
		"- No inventes datos.",
	}, "\n")
}
