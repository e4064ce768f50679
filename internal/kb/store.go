package kb

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
)

// Embedder produces a vector for a text, or reports false when no
// vector is available (provider disabled, failed or timed out).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, bool)
}

// Store indexes knowledge items per tenant and answers ranked
// searches. Scoring is hybrid: cosine similarity when both the query
// and the item have a vector, token-overlap ratio otherwise.
type Store struct {
	embedder Embedder
	logger   *zap.Logger

	mu      sync.RWMutex
	items   map[string][]domain.KbItem
	vectors map[string]map[string][]float32
}

// NewStore builds a store over the loaded items. Vectors are computed
// lazily via BuildVectors so startup does not block on the provider.
func NewStore(items map[string][]domain.KbItem, embedder Embedder, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		embedder: embedder,
		logger:   logger,
		items:    items,
		vectors:  map[string]map[string][]float32{},
	}
}

// Replace swaps the full item set, dropping any cached vectors.
func (s *Store) Replace(items map[string][]domain.KbItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.vectors = map[string]map[string][]float32{}
}

// BuildVectors embeds every item. Failed embeds are skipped; those
// items fall back to lexical scoring at query time.
func (s *Store) BuildVectors(ctx context.Context) {
	if s.embedder == nil {
		return
	}
	s.mu.RLock()
	snapshot := s.items
	s.mu.RUnlock()

	built := map[string]map[string][]float32{}
	total := 0
	for tenant, items := range snapshot {
		vectors := map[string][]float32{}
		for _, item := range items {
			if vec, ok := s.embedder.Embed(ctx, item.EmbeddingText()); ok {
				vectors[item.ID] = vec
				total++
			}
		}
		built[tenant] = vectors
	}

	s.mu.Lock()
	s.vectors = built
	s.mu.Unlock()
	s.logger.Info("kb vectors built", zap.Int("count", total))
}

// ListItems returns the tenant's items in load order.
func (s *Store) ListItems(tenant string) []domain.KbItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[NormalizeTenant(tenant)]
}

// FindByID resolves an item by its id, case-insensitively.
func (s *Store) FindByID(tenant, id string) (domain.KbItem, bool) {
	for _, item := range s.ListItems(tenant) {
		if strings.EqualFold(item.ID, id) {
			return item, true
		}
	}
	return domain.KbItem{}, false
}

// Search scores every tenant item against the query and returns up to
// limit matches, sorted non-increasing by score. Ties keep load order.
func (s *Store) Search(ctx context.Context, tenant, query string, limit int) []domain.SearchMatch {
	items := s.ListItems(tenant)
	if len(items) == 0 || limit <= 0 {
		return nil
	}

	var queryVec []float32
	if s.embedder != nil {
		queryVec, _ = s.embedder.Embed(ctx, query)
	}

	s.mu.RLock()
	vectors := s.vectors[NormalizeTenant(tenant)]
	s.mu.RUnlock()

	matches := make([]domain.SearchMatch, 0, len(items))
	for _, item := range items {
		score := 0.0
		if itemVec, ok := vectors[item.ID]; ok && len(queryVec) > 0 {
			score = CosineSimilarity(queryVec, itemVec)
		} else {
			score = LexicalScore(query, item.EmbeddingText())
		}
		matches = append(matches, domain.SearchMatch{Item: item, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// CosineSimilarity is dot(a,b) over the product of L2 norms. Empty,
// mismatched or zero-norm vectors score -1, which never clears any
// relevance floor.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// LexicalScore is the share of query tokens found in the document.
func LexicalScore(query, document string) float64 {
	q := Tokenize(query)
	d := Tokenize(document)
	if len(q) == 0 || len(d) == 0 {
		return 0
	}
	overlap := 0
	for token := range q {
		if _, ok := d[token]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(q))
}

// Tokenize casefolds, strips everything but letters and digits and
// keeps tokens longer than two runes. Accented Spanish letters stay
// intact so "camión" and "camion" remain distinct documents.
func Tokenize(text string) map[string]struct{} {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("áéíóúñü", r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))

	tokens := map[string]struct{}{}
	for _, token := range strings.Fields(cleaned) {
		if len([]rune(token)) > 2 {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}
