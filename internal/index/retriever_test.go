package index

import (
	"testing"

	"github.com/cloo-solutions/snowbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, vecs map[string][]float32, order []string) *VectorIndex {
	t.Helper()
	idx := &VectorIndex{}
	for _, id := range order {
		vec := vecs[id]
		if idx.dimensions == 0 {
			idx.dimensions = len(vec)
		}
		idx.entries = append(idx.entries, entry{
			doc: domain.Document{ID: id, Text: "doc " + id},
			vec: vec,
		})
	}
	return idx
}

func ids(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestRetriever_Retrieve_OrdersBySimilarity(t *testing.T) {
	idx := buildIndex(t, map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
		"c": {0.7, 0.7},
	}, []string{"a", "b", "c"})

	docs := NewRetriever(3).Retrieve(idx, []float32{1, 0})

	assert.Equal(t, []string{"a", "c", "b"}, ids(docs))
}

func TestRetriever_Retrieve_TopK(t *testing.T) {
	idx := buildIndex(t, map[string][]float32{
		"a": {1, 0},
		"b": {0.9, 0.1},
		"c": {0, 1},
	}, []string{"a", "b", "c"})

	docs := NewRetriever(2).Retrieve(idx, []float32{1, 0})

	require.Len(t, docs, 2)
	assert.Equal(t, []string{"a", "b"}, ids(docs))
}

func TestRetriever_Retrieve_TieBreakByInsertionOrder(t *testing.T) {
	// Same direction, different magnitude: cosine scores are equal.
	idx := buildIndex(t, map[string][]float32{
		"first":  {1, 1},
		"second": {2, 2},
		"third":  {3, 3},
	}, []string{"first", "second", "third"})

	docs := NewRetriever(3).Retrieve(idx, []float32{1, 1})

	assert.Equal(t, []string{"first", "second", "third"}, ids(docs))
}

func TestRetriever_Retrieve_Deterministic(t *testing.T) {
	idx := buildIndex(t, map[string][]float32{
		"a": {0.2, 0.8},
		"b": {0.8, 0.2},
		"c": {0.5, 0.5},
	}, []string{"a", "b", "c"})
	r := NewRetriever(3)
	query := []float32{0.6, 0.4}

	first := ids(r.Retrieve(idx, query))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ids(r.Retrieve(idx, query)))
	}
}

func TestRetriever_Retrieve_EmptyIndex(t *testing.T) {
	docs := NewRetriever(4).Retrieve(&VectorIndex{}, []float32{1, 0})

	assert.Empty(t, docs)
}

func TestRetriever_Retrieve_NilIndex(t *testing.T) {
	assert.Empty(t, NewRetriever(4).Retrieve(nil, []float32{1, 0}))
}

func TestRetriever_Retrieve_KLargerThanIndex(t *testing.T) {
	idx := buildIndex(t, map[string][]float32{"a": {1, 0}}, []string{"a"})

	docs := NewRetriever(4).Retrieve(idx, []float32{1, 0})

	assert.Len(t, docs, 1)
}

func TestNewRetriever_DefaultK(t *testing.T) {
	assert.Equal(t, DefaultK, NewRetriever(0).K())
	assert.Equal(t, DefaultK, NewRetriever(-1).K())
	assert.Equal(t, 7, NewRetriever(7).K())
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}), "mismatched lengths score zero")
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}), "zero vector scores zero")
}
