package engine

import (
	"fmt"
	"strings"

	"github.com/nebulasur/ventia/internal/domain"
	"github.com/nebulasur/ventia/internal/kb"
)

// ActionResult holds the cart operations detected in a message and,
// for add/remove, the single item they resolved to.
type ActionResult struct {
	Actions []domain.ChatAction
	Item    *domain.KbItem
}

// HasActions reports whether any cart operation was detected.
func (r ActionResult) HasActions() bool { return len(r.Actions) > 0 }

// hasAdd reports whether one of the detected operations is an add.
func (r ActionResult) hasAdd() bool {
	for _, action := range r.Actions {
		if action.Type == domain.ActionAdd {
			return true
		}
	}
	return false
}

// minItemScore is the token-overlap floor an item must clear to be
// accepted as the target of an add/remove verb.
const defaultMinItemScore = 0.18

// DetectActions scans the raw message for cart verbs and resolves the
// target item against the tenant's knowledge base, falling back to
// the cart payload when the KB yields nothing.
func DetectActions(message string, items []domain.KbItem, cart []domain.CartEntry, minItemScore float64) ActionResult {
	normalized := actionNormalize(message)
	result := ActionResult{Actions: []domain.ChatAction{}}

	wantsAdd := actionContainsAny(normalized,
		"añade", "agrega", "agregar", "suma", "incluye", "mete", "add", "include", "put in cart", "add to cart")
	wantsRemove := actionContainsAny(normalized,
		"quita", "elimina", "saca", "borra", "remove", "delete", "drop")
	wantsClear := actionContainsAny(normalized,
		"vaciar carrito", "vacía carrito", "limpia carrito", "clear cart", "empty cart")
	wantsShow := actionContainsAny(normalized,
		"ver carrito", "mostrar carrito", "muéstrame carrito", "show cart", "view cart", "total carrito", "cart total")

	if wantsAdd || wantsRemove {
		if item, ok := bestItemMatch(normalized, items, minItemScore); ok {
			result.Item = &item
		} else if item, ok := matchFromCart(normalized, cart, items); ok {
			result.Item = &item
		}
	}

	if wantsAdd && result.Item != nil {
		result.Actions = append(result.Actions, domain.ChatAction{Type: domain.ActionAdd, ItemID: result.Item.ID})
	}
	if wantsRemove && result.Item != nil {
		result.Actions = append(result.Actions, domain.ChatAction{Type: domain.ActionRemove, ItemID: result.Item.ID})
	}
	if wantsClear {
		result.Actions = append(result.Actions, domain.ChatAction{Type: domain.ActionClear})
	}
	if wantsShow {
		result.Actions = append(result.Actions, domain.ChatAction{Type: domain.ActionShow})
	}
	return result
}

// bestItemMatch scores every item and keeps the winner if it clears
// the floor. Exact id containment scores 1.0, exact title containment
// 0.9, otherwise the token-overlap ratio against title+type decides.
func bestItemMatch(normalizedMessage string, items []domain.KbItem, minScore float64) (domain.KbItem, bool) {
	var winner domain.KbItem
	winnerScore := 0.0
	for _, item := range items {
		score := scoreItemMatch(normalizedMessage, item)
		if score > winnerScore {
			winnerScore = score
			winner = item
		}
	}
	if minScore <= 0 {
		minScore = defaultMinItemScore
	}
	return winner, winnerScore >= minScore
}

func scoreItemMatch(normalizedMessage string, item domain.KbItem) float64 {
	if id := actionNormalize(item.ID); id != "" && strings.Contains(normalizedMessage, id) {
		return 1.0
	}
	if title := actionNormalize(item.Title); title != "" && strings.Contains(normalizedMessage, title) {
		return 0.9
	}

	messageTokens := kb.Tokenize(normalizedMessage)
	itemTokens := kb.Tokenize(item.Title + " " + item.Type)
	if len(messageTokens) == 0 || len(itemTokens) == 0 {
		return 0
	}
	overlap := 0
	for token := range messageTokens {
		if _, ok := itemTokens[token]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(itemTokens))
}

// matchFromCart resolves the target through the cart payload: any
// cart id or title mentioned in the message maps back to a KB item.
func matchFromCart(normalizedMessage string, cart []domain.CartEntry, items []domain.KbItem) (domain.KbItem, bool) {
	for _, entry := range cart {
		if id, ok := entry["id"]; ok {
			if s := actionNormalize(stringify(id)); s != "" && strings.Contains(normalizedMessage, s) {
				return findByID(items, stringify(id))
			}
		}
		if title, ok := entry["title"]; ok {
			if s := actionNormalize(stringify(title)); s != "" && strings.Contains(normalizedMessage, s) {
				return findByTitle(items, stringify(title))
			}
		}
	}
	return domain.KbItem{}, false
}

func findByID(items []domain.KbItem, id string) (domain.KbItem, bool) {
	for _, item := range items {
		if strings.EqualFold(item.ID, id) {
			return item, true
		}
	}
	return domain.KbItem{}, false
}

func findByTitle(items []domain.KbItem, title string) (domain.KbItem, bool) {
	for _, item := range items {
		if strings.EqualFold(item.Title, title) {
			return item, true
		}
	}
	return domain.KbItem{}, false
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// actionNormalize lowercases and strips punctuation but keeps accented
// Spanish letters, so "añade" still matches its keyword as typed.
func actionNormalize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			return r
		case strings.ContainsRune("áéíóúñü", r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))
	return strings.TrimSpace(cleaned)
}

func actionContainsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, actionNormalize(term)) {
			return true
		}
	}
	return false
}
