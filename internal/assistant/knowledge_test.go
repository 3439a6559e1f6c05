package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whrealtors/realty-web/internal/catalog"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// keywordEmbedder maps each text onto fixed axes so cosine ranking is predictable.
type keywordEmbedder struct {
	axes  []string
	err   error
	calls int
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.axes))
		terms := termSet(text)
		for j, axis := range e.axes {
			if _, ok := terms[axis]; ok {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}

func TestKnowledgeStoreLexicalRanking(t *testing.T) {
	store := NewKnowledgeStore(nil, logging.New("error"))
	require.NoError(t, store.AddDocuments(context.Background(), "ramvan-villas", []string{
		"Clubhouse has a pool, indoor games and a restaurant.",
		"Payment plan: 10% on booking, 20% on BBA, 70% on registry.",
		"Nearby: Garjiya Temple, Kosi River and Pantnagar Airport.",
	}))

	got, err := store.Query(context.Background(), "ramvan-villas", "What is the payment plan at booking?", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Payment plan: 10% on booking, 20% on BBA, 70% on registry.", got[0])

	none, err := store.Query(context.Background(), "firefly-homes", "pool", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestKnowledgeStoreEmbeddingRanking(t *testing.T) {
	embedder := &keywordEmbedder{axes: []string{"pool", "airport", "registry"}}
	store := NewKnowledgeStore(embedder, logging.New("error"))
	require.NoError(t, store.AddDocuments(context.Background(), "ramvan-villas", []string{
		"Pay 70% on registry.",
		"The airport is 80 km away.",
		"There is a pool in the clubhouse.",
	}))

	got, err := store.Query(context.Background(), "ramvan-villas", "how far is the airport", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"The airport is 80 km away."}, got)
	assert.Equal(t, 2, embedder.calls)
}

func TestKnowledgeStoreFallsBackWhenQueryEmbeddingFails(t *testing.T) {
	embedder := &keywordEmbedder{axes: []string{"pool"}}
	store := NewKnowledgeStore(embedder, logging.New("error"))
	require.NoError(t, store.AddDocuments(context.Background(), "p", []string{"Garden views.", "Rooftop pool deck."}))

	embedder.err = errors.New("bedrock throttled")
	got, err := store.Query(context.Background(), "p", "is there a pool", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rooftop pool deck."}, got)
}

func TestKnowledgeStoreAddDocumentsEmbedError(t *testing.T) {
	store := NewKnowledgeStore(&keywordEmbedder{err: errors.New("denied")}, logging.New("error"))
	err := store.AddDocuments(context.Background(), "p", []string{"a passage"})
	assert.ErrorContains(t, err, "denied")
}

func TestLoadCatalogKnowledgeFromEmbeddedCatalog(t *testing.T) {
	cat, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)

	store := NewKnowledgeStore(nil, logging.New("error"))
	indexed, err := LoadCatalogKnowledge(context.Background(), store, cat)
	require.NoError(t, err)
	assert.Equal(t, 3, indexed)

	got, err := store.Query(context.Background(), "krupal-habitat", "preferential location charges for corner plots", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Preferential location charges")

	none, err := store.Query(context.Background(), "sunrise-towers", "gym", 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}
