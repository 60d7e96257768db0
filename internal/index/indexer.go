// Package index builds and queries the in-memory similarity index over
// incident documents.
package index

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/snowbot/internal/domain"
	"github.com/cloo-solutions/snowbot/internal/telemetry"
)

// Embedder generates a fixed-dimension vector for a text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type entry struct {
	doc domain.Document
	vec []float32
}

// VectorIndex is an immutable collection of (document, embedding) pairs built
// from one snapshot. It is never mutated after Build returns, so concurrent
// readers need no locking.
type VectorIndex struct {
	entries    []entry
	dimensions int
}

// Len returns the number of indexed documents.
func (x *VectorIndex) Len() int {
	return len(x.entries)
}

// Dimensions returns the embedding dimension, or 0 for an empty index.
func (x *VectorIndex) Dimensions() int {
	return x.dimensions
}

// Document returns the i-th indexed document in insertion order.
func (x *VectorIndex) Document(i int) domain.Document {
	return x.entries[i].doc
}

// Indexer converts incident records into an embedded vector index.
type Indexer struct {
	embedder Embedder
}

// NewIndexer creates an Indexer using the given embedding provider.
func NewIndexer(embedder Embedder) *Indexer {
	return &Indexer{embedder: embedder}
}

// Build renders every record into a document, embeds it, and returns the
// assembled index. Zero records yield a valid empty index. Any embedding
// failure, or a vector whose dimension differs from earlier vectors in the
// same build, aborts with ErrIndexBuild.
func (ix *Indexer) Build(ctx context.Context, records []domain.IncidentRecord) (*VectorIndex, error) {
	ctx, span := telemetry.StartSpan(ctx, "Indexer.Build", telemetry.SpanAttributes{
		Operation: "index_build",
	})
	defer span.End()

	idx := &VectorIndex{entries: make([]entry, 0, len(records))}
	for i, rec := range records {
		doc := RenderDocument(rec)

		vec, err := ix.embedder.GenerateEmbedding(ctx, doc.Text)
		if err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("embedding record %d (sys_id %q): %w", i, doc.ID, domain.NewDomainErrorWithCause(domain.ErrCodeIndexBuild, "embedding call failed", err))
		}
		if idx.dimensions == 0 {
			idx.dimensions = len(vec)
		} else if len(vec) != idx.dimensions {
			err := fmt.Errorf("record %d (sys_id %q) has dimension %d, index has %d: %w", i, doc.ID, len(vec), idx.dimensions, domain.ErrIndexBuild)
			span.SetError(err)
			return nil, err
		}

		idx.entries = append(idx.entries, entry{doc: doc, vec: vec})
	}

	log.Printf("index: built %d documents (dimension %d)", idx.Len(), idx.dimensions)
	return idx, nil
}

// RenderDocument renders a record into its retrievable document. Fields are
// emitted in the record's canonical order so repeated builds over the same
// snapshot produce identical text.
func RenderDocument(rec domain.IncidentRecord) domain.Document {
	var b strings.Builder
	for _, f := range rec.Fields {
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(rec.Value(f))
		b.WriteString("\n")
	}
	return domain.Document{
		ID:     rec.SysID(),
		Text:   b.String(),
		Record: rec,
	}
}
