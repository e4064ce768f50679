package domain

import "strings"

// KbItem is a knowledge record loaded from a tenant's flat file.
// Items are immutable once loaded.
type KbItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Benefits    string `json:"benefits"`
	UseCases    string `json:"useCases"`
	Price       string `json:"price"`
	Notes       string `json:"notes"`
}

// ContextBlock renders the item in the KEY: value layout used for
// prompt context and for lexical matching.
func (i KbItem) ContextBlock() string {
	return strings.Join([]string{
		"ID: " + i.ID,
		"TITLE: " + i.Title,
		"TYPE: " + i.Type,
		"DESCRIPTION: " + i.Description,
		"BENEFITS: " + i.Benefits,
		"USE_CASES: " + i.UseCases,
		"PRICE: " + i.Price,
		"NOTES: " + i.Notes,
	}, "\n")
}

// EmbeddingText concatenates every field, one per line. The same text
// is embedded at load time and searched lexically when no vector is
// available, so both scorers see an identical document.
func (i KbItem) EmbeddingText() string {
	return strings.Join([]string{
		i.ID, i.Title, i.Type, i.Description, i.Benefits, i.UseCases, i.Price, i.Notes,
	}, "\n")
}

// APIMap is the flat representation returned to the widget.
func (i KbItem) APIMap() map[string]any {
	return map[string]any{
		"id":          i.ID,
		"title":       i.Title,
		"type":        i.Type,
		"description": i.Description,
		"price":       i.Price,
		"notes":       i.Notes,
	}
}

// SearchMatch pairs an item with its relevance score: cosine
// similarity in [-1, 1] when vectors are available, token-overlap
// ratio in [0, 1] otherwise.
type SearchMatch struct {
	Item  KbItem
	Score float64
}
