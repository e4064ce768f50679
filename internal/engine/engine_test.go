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
	"github.com/nebulasur/ventia/internal/llm"
)

func testItems() map[string][]domain.KbItem {
	return map[string][]domain.KbItem{
		"A": {
			{
				ID:          "A-00",
				Title:       "Urbania Nexus Inmobiliaria - Perfil corporativo",
				Type:        "empresa",
				Description: "Agencia inmobiliaria especializada en compraventa y alquiler de vivienda en Madrid.",
				Benefits:    "Acompanamiento completo desde la busqueda hasta la firma.",
				Notes:       "Direccion central: Calle Orense 18, Madrid (zona AZCA). Telefono: +34 910 240 118. Email: contacto@urbanianexus.demo. Horario: L-V de 9:30 a 19:00.",
			},
			{
				ID:          "A-01",
				Title:       "Busqueda personalizada de vivienda",
				Type:        "servicio",
				Description: "Un asesor dedicado filtra el mercado segun zona y presupuesto.",
				Benefits:    "Ahorra semanas de busqueda.",
				Price:       "290 EUR",
			},
			{
				ID:          "A-03",
				Title:       "Plan Vende Sin Estres",
				Type:        "plan",
				Description: "Gestion integral de la venta de vivienda.",
				Benefits:    "El propietario solo decide.",
				Price:       "2.9% sobre precio de venta",
			},
		},
		"C": {
			{
				ID:          "C-00",
				Title:       "MotoRecambio Atlas - Perfil corporativo",
				Type:        "empresa",
				Description: "Almacen y distribucion de recambios multimarca.",
				Notes:       "Direccion central: Poligono Industrial La Estrella, Nave 12, Zaragoza. Telefono: +34 976 550 410. Email: ventas@motorecambioatlas.demo. Horario: L-V 08:00-19:00.",
			},
			{
				ID:          "C-02",
				Title:       "Filtro de aceite multimarca",
				Type:        "producto",
				Description: "Filtro de aceite con juntas incluidas.",
				Benefits:    "Compatibilidad verificada antes del envio.",
				Price:       "9 EUR",
				Notes:       "Requiere datos del vehiculo (marca/modelo, ano, motor o VIN) para fijar la referencia.",
			},
			{
				ID:          "C-04",
				Title:       "Bateria 12V 60Ah arranque convencional",
				Type:        "producto",
				Description: "Bateria de arranque para turismo.",
				Benefits:    "Entrega urgente en 24 horas.",
				Price:       "78 EUR",
			},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store := kb.NewStore(testItems(), nil, zap.NewNop())
	sessions := NewSessionStore(0)
	t.Cleanup(sessions.Close)
	cache := NewReplyCache(nil, 45*time.Second, zap.NewNop())
	return New(store, llm.Disabled{}, sessions, cache, Options{MinRelevance: 0.12}, zap.NewNop())
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, 0.0, opts.MinRelevance)
	assert.Equal(t, defaultMinItemScore, opts.MinItemScore)
	assert.Equal(t, 5, opts.SearchLimit)
	assert.Equal(t, 8, opts.WindowMax)

	clamped := Options{MinRelevance: 1.5}.withDefaults()
	assert.Equal(t, 1.0, clamped.MinRelevance)

	negative := Options{MinRelevance: -0.3}.withDefaults()
	assert.Equal(t, 0.0, negative.MinRelevance)
}

func TestChatGreeting(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "hola", SessionID: "s1",
	})

	require.NotNil(t, resp)
	assert.Contains(t, resp.Reply, "Urbania Nexus Inmobiliaria")
	assert.Empty(t, resp.Actions)
	assert.Empty(t, resp.Citations)
}

func TestChatGreetingEnglish(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "en", Message: "hello", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "commercial assistant")
}

func TestChatUnknownTenantDefaultsToA(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "Z", Lang: "es", Message: "hola", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "Urbania Nexus Inmobiliaria")
}

func TestChatPrivacyClearsFlow(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	eng.Chat(ctx, domain.ChatRequest{KB: "A", Lang: "es", Message: "quiero una cita", SessionID: "s1"})
	state := eng.sessions.GetOrCreate("A", "s1", "es")
	require.Equal(t, domain.FlowCitaMotivo, state.Flow)

	resp := eng.Chat(ctx, domain.ChatRequest{KB: "A", Lang: "es", Message: "guardais mis datos?", SessionID: "s1"})

	assert.Contains(t, resp.Reply, "privacidad")
	assert.Equal(t, domain.FlowNone, state.Flow)
}

func TestChatContactInfo(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "dame vuestro telefono", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "+34 910 240 118")
	assert.Contains(t, resp.Reply, "contacto@urbanianexus.demo")
}

func TestChatLocation(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "donde esta la oficina", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "Calle Orense 18")
	assert.Contains(t, resp.Reply, "L-V de 9:30 a 19:00")
}

func TestChatOutOfScopeNamesEscalationContact(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "xyzzy qwerty asdf", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "Urbania Nexus Inmobiliaria")
	assert.Contains(t, resp.Reply, "Laura Serrano")
}

func TestChatFallbackCarriesCitations(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "necesito un asesor dedicado que filtre el mercado segun presupuesto", SessionID: "s1",
	})

	require.NotEmpty(t, resp.Citations)
	for _, citation := range resp.Citations {
		assert.Contains(t, citation, " - ")
	}
}

func TestChatRecommendationWithoutMatches(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "que me recomiendas", SessionID: "s1",
	})

	// Default recommendations skip the company record.
	assert.NotContains(t, resp.Reply, "Perfil corporativo")
	assert.NotEmpty(t, resp.Reply)
}

func TestChatVehicleFilterTrigger(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	resp := eng.Chat(ctx, domain.ChatRequest{
		KB: "C", Lang: "es", Message: "anade un filtro de recambio al carrito", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "datos del vehiculo")
	state := eng.sessions.GetOrCreate("C", "s1", "es")
	assert.Equal(t, domain.FlowCarritoDatosVehiculo, state.Flow)
	assert.Equal(t, "C-02", state.Get("cart_item_id"))
}

func TestChatVehicleFlowCompletes(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	eng.Chat(ctx, domain.ChatRequest{KB: "C", Lang: "es", Message: "anade un filtro de recambio al carrito", SessionID: "s1"})
	resp := eng.Chat(ctx, domain.ChatRequest{KB: "C", Lang: "es", Message: "seat leon 2018 motor tdi", SessionID: "s1"})

	require.Len(t, resp.Actions, 1)
	assert.Equal(t, domain.ActionAdd, resp.Actions[0].Type)
	assert.Equal(t, "C-02", resp.Actions[0].ItemID)
	require.NotNil(t, resp.Item)
	assert.Equal(t, "C-02", resp.Item["id"])

	state := eng.sessions.GetOrCreate("C", "s1", "es")
	assert.Equal(t, domain.FlowNone, state.Flow)
}

func TestChatAccentedFilterAddDefersToVehicleFlow(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	// The accented verb resolves C-02 through token overlap, but a
	// filter still needs vehicle data before the add is committed.
	resp := eng.Chat(ctx, domain.ChatRequest{
		KB: "C", Lang: "es", Message: "añade filtro al carrito", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "datos del vehiculo")
	assert.Empty(t, resp.Actions)
	assert.Nil(t, resp.Item)
	state := eng.sessions.GetOrCreate("C", "s1", "es")
	assert.Equal(t, domain.FlowCarritoDatosVehiculo, state.Flow)
	assert.Equal(t, "C-02", state.Get("cart_item_id"))
}

func TestChatAddNamedFilterDefersUntilVehicleData(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	resp := eng.Chat(ctx, domain.ChatRequest{
		KB: "C", Lang: "es", Message: "añade el filtro de aceite multimarca al carrito", SessionID: "s1",
	})
	assert.Empty(t, resp.Actions)
	state := eng.sessions.GetOrCreate("C", "s1", "es")
	require.Equal(t, domain.FlowCarritoDatosVehiculo, state.Flow)

	resp = eng.Chat(ctx, domain.ChatRequest{
		KB: "C", Lang: "es", Message: "seat leon 2018 motor tdi", SessionID: "s1",
	})
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, domain.ActionAdd, resp.Actions[0].Type)
	assert.Equal(t, "C-02", resp.Actions[0].ItemID)
	assert.Equal(t, domain.FlowNone, state.Flow)
}

func TestChatAddItemWithoutVehicleGateEmitsAction(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "C", Lang: "es", Message: "añade la bateria 12v 60ah arranque convencional al carrito", SessionID: "s1",
	})

	require.Len(t, resp.Actions, 1)
	assert.Equal(t, domain.ActionAdd, resp.Actions[0].Type)
	assert.Equal(t, "C-04", resp.Actions[0].ItemID)
	require.NotNil(t, resp.Item)
	assert.Equal(t, "C-04", resp.Item["id"])

	state := eng.sessions.GetOrCreate("C", "s1", "es")
	assert.Equal(t, domain.FlowNone, state.Flow)
}

func TestChatLanguageSwitchResetsSession(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	eng.Chat(ctx, domain.ChatRequest{KB: "A", Lang: "es", Message: "quiero una cita", SessionID: "s1"})
	eng.Chat(ctx, domain.ChatRequest{KB: "A", Lang: "en", Message: "hello", SessionID: "s1"})

	state := eng.sessions.GetOrCreate("A", "s1", "en")
	assert.Equal(t, domain.FlowNone, state.Flow)
	assert.Equal(t, "en", state.Lang)
}

func TestChatBlankSessionIDStillAnswers(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "hola",
	})

	assert.NotEmpty(t, resp.Reply)
}

func TestChatPropertySearchStartsFlowForTenantA(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Chat(context.Background(), domain.ChatRequest{
		KB: "A", Lang: "es", Message: "busco vivienda en madrid", SessionID: "s1",
	})

	assert.Contains(t, resp.Reply, "zona o ciudad")
	state := eng.sessions.GetOrCreate("A", "s1", "es")
	assert.Equal(t, domain.FlowPropiedadZona, state.Flow)
}

func TestPropertySearchResponseRedirectsNonRealEstate(t *testing.T) {
	eng := newTestEngine(t)
	state := eng.sessions.GetOrCreate("C", "s1", "es")

	resp := eng.propertySearchResponse(state, "C", "es")

	assert.Contains(t, resp.Reply, "Urbania Nexus Inmobiliaria")
	assert.Equal(t, domain.FlowNone, state.Flow)
}
