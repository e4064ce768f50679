package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
	"github.com/nebulasur/ventia/internal/llm"
)

// Options tunes the retrieval and composition pipeline.
type Options struct {
	// MinRelevance drops search matches below this score. Clamped to
	// [0, 1]; zero keeps every match. The config layer supplies the
	// production default.
	MinRelevance float64
	// MinItemScore is the floor for matching a cart action to an item.
	MinItemScore float64
	// SearchLimit caps retrieved matches per message.
	SearchLimit int
	// WindowMax caps the rolling history sent on the windowed path.
	WindowMax int
}

func (o Options) withDefaults() Options {
	if o.MinRelevance < 0 {
		o.MinRelevance = 0
	}
	if o.MinRelevance > 1 {
		o.MinRelevance = 1
	}
	if o.MinItemScore <= 0 {
		o.MinItemScore = defaultMinItemScore
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 5
	}
	if o.WindowMax <= 0 {
		o.WindowMax = 8
	}
	return o
}

// Engine runs the conversation pipeline for every tenant: intent
// classification, cart actions, guided flows, retrieval and reply
// composition.
type Engine struct {
	kb       *kb.Store
	llm      llm.Client
	sessions *SessionStore
	cache    ReplyCache
	opts     Options
	logger   *zap.Logger
}

func New(store *kb.Store, client llm.Client, sessions *SessionStore, cache ReplyCache, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		kb:       store,
		llm:      client,
		sessions: sessions,
		cache:    cache,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Chat handles one stateless-transport turn. The request carries the
// whole conversation identity; server state is limited to the session
// flow fields.
func (e *Engine) Chat(ctx context.Context, req domain.ChatRequest) *domain.ChatResponse {
	tenant := kb.NormalizeTenant(firstNonEmpty(req.KB, req.TenantID))
	lang := normalizeLang(req.Lang)
	message := strings.TrimSpace(req.Message)
	normalizedMessage := Normalize(message)
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state := e.sessions.GetOrCreate(tenant, sessionID, lang)
	if !strings.EqualFold(state.Lang, lang) {
		state.Reset(tenant, lang)
	}

	items := e.kb.ListItems(tenant)
	actions := DetectActions(message, items, req.Cart, e.opts.MinItemScore)
	intent := Classify(tenant, normalizedMessage)

	e.logger.Debug("chat turn",
		zap.String("tenant", tenant),
		zap.String("lang", lang),
		zap.String("intent", string(intent)),
		zap.String("flow", string(state.Flow)))

	if intent == domain.IntentPrivacy {
		state.Clear()
		return e.privacyResponse(lang)
	}
	if intent == domain.IntentContactInfo {
		state.Clear()
		return e.contactInfoResponse(tenant, lang, normalizedMessage)
	}

	if reply := e.handlePendingFlow(state, tenant, lang, message, normalizedMessage, intent, actions); reply != nil {
		return reply
	}

	switch intent {
	case domain.IntentLocation:
		return e.locationResponse(tenant, lang, isLocationOnlyRequest(normalizedMessage) || showsFrustration(normalizedMessage))
	case domain.IntentDirections:
		return e.directionsResponse(tenant, lang, normalizedMessage)
	case domain.IntentGreeting:
		return e.greetingResponse(tenant, lang)
	case domain.IntentIdentity:
		return e.identityResponse(tenant, lang)
	case domain.IntentCatalog:
		return e.catalogResponse(tenant, lang)
	case domain.IntentPropertySearch:
		return e.propertySearchResponse(state, tenant, lang)
	case domain.IntentAppointment:
		state.Clear()
		state.Flow = domain.FlowCitaMotivo
		if lang == "en" {
			return domain.SimpleResponse("Perfect. Let us schedule your appointment. What is the reason for the meeting?")
		}
		return domain.SimpleResponse("Perfecto. Vamos a concertar tu cita. Cual es el motivo de la reunion?")
	case domain.IntentPersonal:
		return e.personalResponse(tenant, lang)
	case domain.IntentSmalltalk:
		return e.smalltalkResponse(lang)
	}

	if isAddToCartPendingVehicle(tenant, normalizedMessage, actions) {
		state.Clear()
		state.Flow = domain.FlowCarritoDatosVehiculo
		pendingID := "C-02"
		if actions.Item != nil {
			pendingID = actions.Item.ID
		}
		state.Put("cart_item_id", pendingID)
		if lang == "en" {
			return domain.SimpleResponse("Perfect. To add the correct filter, I need vehicle data: brand/model, year, engine, or VIN.")
		}
		return domain.SimpleResponse("Perfecto. Para anadir el filtro correcto, necesito datos del vehiculo: marca/modelo, ano, motor o VIN.")
	}

	matches := e.kb.Search(ctx, tenant, message, e.opts.SearchLimit)
	relevant := matches[:0:0]
	for _, match := range matches {
		if match.Score >= e.opts.MinRelevance {
			relevant = append(relevant, match)
		}
	}

	if len(relevant) == 0 && actions.Item != nil {
		relevant = []domain.SearchMatch{{Item: *actions.Item, Score: 1.0}}
	}
	if len(relevant) == 0 && !actions.HasActions() {
		if isRecommendationRequest(message) {
			relevant = e.defaultRecommendations(tenant)
		} else {
			return e.outOfScopeResponse(tenant, lang)
		}
	}

	citations := make([]string, 0, len(relevant))
	blocks := make([]string, 0, len(relevant))
	for _, match := range relevant {
		citations = append(citations, match.Item.ID+" - "+match.Item.Title)
		blocks = append(blocks, match.Item.ContextBlock())
	}
	kbContext := strings.Join(blocks, "\n\n---\n\n")

	reply, ok := e.llm.Complete(ctx, BuildSystemPrompt(lang), BuildUserPrompt(lang, tenant, message, req.Cart, actions.Actions, kbContext))
	if !ok || strings.TrimSpace(reply) == "" {
		reply = e.fallbackReply(tenant, lang, message, actions.Actions, actions.Item, relevant, req.Cart)
	}

	response := &domain.ChatResponse{
		Reply:     reply,
		Actions:   actions.Actions,
		Citations: citations,
	}
	if response.Actions == nil {
		response.Actions = []domain.ChatAction{}
	}
	if actions.Item != nil {
		response.Item = actions.Item.APIMap()
	}
	return response
}

// isAddToCartPendingVehicle detects a parts-tenant add request for a
// filter. The add is deferred even when the message already resolved a
// catalog item: the follow-up flow collects vehicle data first, then
// emits the action. A resolved item only passes through directly when
// its notes do not require vehicle data, or when the detected
// operation is not an add.
func isAddToCartPendingVehicle(tenant, normalizedMessage string, actions ActionResult) bool {
	if kb.NormalizeTenant(tenant) != kb.TenantC {
		return false
	}
	if actions.Item != nil && (!requiresVehicleData(*actions.Item) || !actions.hasAdd()) {
		return false
	}
	return containsAny(normalizedMessage, "anade", "agrega", "add", "carrito", "cart") &&
		containsAny(normalizedMessage, "filtro", "filter")
}

// requiresVehicleData reports whether an item cannot be committed to
// the cart until the vehicle is identified, per its catalog notes.
func requiresVehicleData(item domain.KbItem) bool {
	return strings.Contains(Normalize(item.Notes), "datos del vehiculo")
}

func normalizeLang(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "en") {
		return "en"
	}
	return "es"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
