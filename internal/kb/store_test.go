package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
)

func storeItems() map[string][]domain.KbItem {
	return map[string][]domain.KbItem{
		TenantA: {
			{ID: "A-01", Title: "Busqueda personalizada de vivienda", Type: "servicio",
				Description: "Un asesor dedicado filtra el mercado segun zona y presupuesto."},
			{ID: "A-02", Title: "Valoracion profesional de inmueble", Type: "servicio",
				Description: "Tasacion orientativa de mercado con comparables reales."},
			{ID: "A-03", Title: "Plan Vende Sin Estres", Type: "plan",
				Description: "Gestion integral de la venta."},
		},
	}
}

// unitEmbedder maps a handful of known texts onto fixed unit vectors.
type unitEmbedder struct {
	vectors map[string][]float32
}

func (e *unitEmbedder) Embed(_ context.Context, text string) ([]float32, bool) {
	vec, ok := e.vectors[text]
	return vec, ok
}

func TestSearchLexical(t *testing.T) {
	store := NewStore(storeItems(), nil, zap.NewNop())

	matches := store.Search(context.Background(), TenantA, "asesor dedicado presupuesto", 5)
	require.NotEmpty(t, matches)
	assert.Equal(t, "A-01", matches[0].Item.ID)
	assert.Greater(t, matches[0].Score, 0.0)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestSearchLimit(t *testing.T) {
	store := NewStore(storeItems(), nil, zap.NewNop())

	matches := store.Search(context.Background(), TenantA, "mercado", 2)
	assert.Len(t, matches, 2)

	assert.Nil(t, store.Search(context.Background(), TenantA, "mercado", 0))
}

func TestSearchUnknownTenantFallsBackToA(t *testing.T) {
	store := NewStore(storeItems(), nil, zap.NewNop())

	matches := store.Search(context.Background(), "Z", "mercado", 5)
	assert.NotEmpty(t, matches)
}

func TestSearchVectorPath(t *testing.T) {
	items := storeItems()
	embedder := &unitEmbedder{vectors: map[string][]float32{
		items[TenantA][0].EmbeddingText(): {1, 0},
		items[TenantA][1].EmbeddingText(): {0, 1},
		items[TenantA][2].EmbeddingText(): {0.7, 0.7},
		"consulta":                        {1, 0},
	}}
	store := NewStore(items, embedder, zap.NewNop())
	store.BuildVectors(context.Background())

	matches := store.Search(context.Background(), TenantA, "consulta", 5)
	require.Len(t, matches, 3)
	assert.Equal(t, "A-01", matches[0].Item.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Equal(t, "A-02", matches[2].Item.ID)
	assert.InDelta(t, 0.0, matches[2].Score, 1e-9)
}

func TestFindByID(t *testing.T) {
	store := NewStore(storeItems(), nil, zap.NewNop())

	item, ok := store.FindByID(TenantA, "a-02")
	require.True(t, ok)
	assert.Equal(t, "Valoracion profesional de inmueble", item.Title)

	_, ok = store.FindByID(TenantA, "A-99")
	assert.False(t, ok)
}

func TestReplaceDropsVectors(t *testing.T) {
	items := storeItems()
	embedder := &unitEmbedder{vectors: map[string][]float32{
		items[TenantA][0].EmbeddingText(): {1, 0},
		"consulta":                        {1, 0},
	}}
	store := NewStore(items, embedder, zap.NewNop())
	store.BuildVectors(context.Background())

	store.Replace(map[string][]domain.KbItem{
		TenantA: {{ID: "N-01", Title: "Nuevo servicio", Type: "servicio"}},
	})

	items2 := store.ListItems(TenantA)
	require.Len(t, items2, 1)
	assert.Equal(t, "N-01", items2[0].ID)

	// Until vectors are rebuilt, scoring is lexical again.
	matches := store.Search(context.Background(), TenantA, "nuevo servicio", 5)
	require.Len(t, matches, 1)
	assert.Greater(t, matches[0].Score, 0.0)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	assert.Equal(t, -1.0, CosineSimilarity(nil, []float32{1}))
	assert.Equal(t, -1.0, CosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, -1.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestLexicalScore(t *testing.T) {
	assert.Equal(t, 1.0, LexicalScore("asesor dedicado", "un asesor dedicado filtra"))
	assert.Equal(t, 0.5, LexicalScore("asesor inexistente", "un asesor dedicado filtra"))
	assert.Equal(t, 0.0, LexicalScore("nada", "un asesor dedicado filtra"))
	assert.Equal(t, 0.0, LexicalScore("", "documento"))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("El camión rojo, 2018!")
	assert.Contains(t, tokens, "camión")
	assert.Contains(t, tokens, "rojo")
	assert.Contains(t, tokens, "2018")
	// Short tokens are dropped.
	assert.NotContains(t, tokens, "el")

	assert.Nil(t, Tokenize("   "))
}
