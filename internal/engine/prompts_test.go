package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nebulasur/ventia/internal/domain"
)

func TestBuildUserPromptNamesBusinessAndSpecialist(t *testing.T) {
	prompt := BuildUserPrompt("es", "A", "quiero vender mi piso", nil, nil, "bloque")

	assert.Contains(t, prompt, "Negocio: Urbania Nexus Inmobiliaria")
	assert.Contains(t, prompt, "Especialista asignado para derivacion: Laura Serrano")
	assert.Contains(t, prompt, "Contexto:\nbloque")
}

func TestBuildUserPromptEnglishSpecialist(t *testing.T) {
	prompt := BuildUserPrompt("en", "C", "I need brake pads", nil, nil, "block")

	assert.Contains(t, prompt, "Business: MotoRecambio Atlas")
	assert.Contains(t, prompt, "Assigned specialist for handoff: Marta Velasco")
}

func TestBuildUserPromptAcknowledgesActions(t *testing.T) {
	actions := []domain.ChatAction{{Type: domain.ActionAdd, ItemID: "C-02"}}

	prompt := BuildUserPrompt("es", "C", "añade el filtro", nil, actions, "")

	assert.Contains(t, prompt, "ADD(C-02)")
	assert.Contains(t, prompt, "Reconoce esas acciones")
}
