package index

import (
	"math"
	"sort"

	"github.com/cloo-solutions/snowbot/internal/domain"
)

// DefaultK is the number of documents retrieved per query unless configured
// otherwise.
const DefaultK = 4

// Retriever returns the top-k most similar documents for a query embedding.
type Retriever struct {
	k int
}

// NewRetriever creates a Retriever returning up to k documents per query.
// Non-positive k falls back to DefaultK.
func NewRetriever(k int) *Retriever {
	if k <= 0 {
		k = DefaultK
	}
	return &Retriever{k: k}
}

// K returns the configured result count.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve scores every indexed document against the query embedding by
// cosine similarity and returns the k best, highest first. Ties keep
// insertion order. An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(idx *VectorIndex, queryEmbedding []float32) []domain.Document {
	if idx == nil || idx.Len() == 0 {
		return nil
	}

	type scored struct {
		doc   domain.Document
		score float64
	}

	results := make([]scored, 0, idx.Len())
	for _, e := range idx.entries {
		results = append(results, scored{doc: e.doc, score: cosineSimilarity(queryEmbedding, e.vec)})
	}

	// Stable sort keeps first-indexed documents ahead on equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	k := r.k
	if k > len(results) {
		k = len(results)
	}
	docs := make([]domain.Document, k)
	for i := 0; i < k; i++ {
		docs[i] = results[i].doc
	}
	return docs
}

// cosineSimilarity computes cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
