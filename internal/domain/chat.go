package domain

// ChatMessage is one turn of a role-tagged conversation window.
type ChatMessage struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// CartEntry is a loosely typed cart line as sent by the storefront
// widget. Known keys: id, title, qty, price.
type CartEntry map[string]any

// ChatRequest is the inbound message envelope. When Messages is
// non-empty the request is handled as a rolling conversation window;
// otherwise Message drives the single-turn engine.
type ChatRequest struct {
	KB        string        `json:"kb"`
	TenantID  string        `json:"tenantId,omitempty"`
	Lang      string        `json:"lang"`
	Message   string        `json:"message"`
	SessionID string        `json:"sessionId,omitempty"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	Cart      []CartEntry   `json:"cart,omitempty"`
}

// Action types emitted for the storefront cart.
const (
	ActionAdd    = "ADD"
	ActionRemove = "REMOVE"
	ActionClear  = "CLEAR"
	ActionShow   = "SHOW"
)

// ChatAction is a cart operation detected in the user message.
type ChatAction struct {
	Type   string `json:"type"`
	ItemID string `json:"itemId,omitempty"`
}

// ChatResponse is the reply envelope. Every path produces a non-empty
// Reply; Actions and Citations are empty slices when not applicable.
type ChatResponse struct {
	Reply     string         `json:"reply"`
	Actions   []ChatAction   `json:"actions"`
	Item      map[string]any `json:"item,omitempty"`
	Citations []string       `json:"citations"`
}

// SimpleResponse wraps a plain reply with empty actions and citations.
func SimpleResponse(reply string) *ChatResponse {
	return &ChatResponse{
		Reply:     reply,
		Actions:   []ChatAction{},
		Citations: []string{},
	}
}
