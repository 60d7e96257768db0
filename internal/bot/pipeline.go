// Package bot orchestrates one question through retrieval, prompt
// composition, and answer generation.
package bot

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"github.com/cloo-solutions/snowbot/internal/domain"
	"github.com/cloo-solutions/snowbot/internal/index"
	"github.com/cloo-solutions/snowbot/internal/telemetry"
)

// QueryEmbedder embeds the question into the same space as the index.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// DocRetriever returns the most similar documents for a query embedding.
type DocRetriever interface {
	Retrieve(idx *index.VectorIndex, queryEmbedding []float32) []domain.Document
}

// Generator produces the model answer for a composed prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Canned conversational inputs, matched after trimming and case folding.
var cannedReplies = map[string]string{
	"thank you":  domain.MsgYoureWelcome,
	"thanks":     domain.MsgYoureWelcome,
	"thank you!": domain.MsgYoureWelcome,
	"bye":        domain.MsgGoodbye,
	"exit":       domain.MsgGoodbye,
	"stop":       domain.MsgGoodbye,
	"end":        domain.MsgGoodbye,
}

// Pipeline answers questions against a pre-built vector index. Constructed
// once at startup and shared by all requests; Ask is safe for concurrent use
// because the installed index is immutable and read through an atomic
// pointer.
type Pipeline struct {
	embedder  QueryEmbedder
	retriever DocRetriever
	generator Generator

	idx atomic.Pointer[index.VectorIndex]
}

// NewPipeline wires the three query stages together. The pipeline is not
// ready until InstallIndex is called with a successfully built index.
func NewPipeline(embedder QueryEmbedder, retriever DocRetriever, generator Generator) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
	}
}

// InstallIndex atomically swaps in a freshly built index. Queries in flight
// keep reading the index they started with.
func (p *Pipeline) InstallIndex(idx *index.VectorIndex) {
	p.idx.Store(idx)
}

// Ready reports whether an index has been installed.
func (p *Pipeline) Ready() bool {
	return p.idx.Load() != nil
}

// IndexSize returns the number of documents in the installed index, or 0.
func (p *Pipeline) IndexSize() int {
	idx := p.idx.Load()
	if idx == nil {
		return 0
	}
	return idx.Len()
}

// Ask answers a single question. Per-query failures (blank question,
// generation failure) are recovered into the returned Answer; the only error
// returned is ErrIndexNotReady, for queries arriving before startup indexing
// completed.
func (p *Pipeline) Ask(ctx context.Context, question string) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.FailedAnswer(domain.AnswerKindEmptyQuestion, domain.MsgEmptyQuestion), nil
	}

	if reply, ok := cannedReplies[strings.ToLower(question)]; ok {
		return domain.CannedAnswer(reply), nil
	}

	idx := p.idx.Load()
	if idx == nil {
		return domain.Answer{}, domain.ErrIndexNotReady
	}

	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Ask", telemetry.SpanAttributes{
		Operation: "ask",
		Documents: idx.Len(),
	})
	defer span.End()

	docs, err := p.retrieve(ctx, idx, question)
	if err != nil {
		log.Printf("bot: query embedding failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return domain.FailedAnswer(domain.AnswerKindGenerationFailed, domain.MsgGenerationFailed), nil
	}

	prompt := composePrompt(docs, question)

	text, err := p.generate(ctx, prompt)
	if err != nil {
		log.Printf("bot: generation failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return domain.FailedAnswer(domain.AnswerKindGenerationFailed, domain.MsgGenerationFailed), nil
	}

	return domain.GeneratedAnswer(text), nil
}

func (p *Pipeline) retrieve(ctx context.Context, idx *index.VectorIndex, question string) ([]domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	queryEmbedding, err := p.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return p.retriever.Retrieve(idx, queryEmbedding), nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Generate", telemetry.SpanAttributes{
		Operation: "generate",
	})
	defer span.End()

	text, err := p.generator.Complete(ctx, prompt)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	return text, nil
}
