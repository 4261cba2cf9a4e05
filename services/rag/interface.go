// Package rag holds the thin clients for the hosted retrieval and
// generation services. Everything here is call/response plumbing; the
// hard parts (similarity search, embeddings, inference) live upstream.
package rag

import (
	"context"

	"medibook/models"
)

// Retriever returns the passages most similar to a query.
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]models.Passage, error)
}

// Embedder turns text into vectors for the index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces the assistant reply for a fully built prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorWriter upserts embedded chunks, used by offline ingestion only.
type VectorWriter interface {
	Upsert(ctx context.Context, vectors []Vector) error
}

// Vector is one entry in the hosted index.
type Vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
