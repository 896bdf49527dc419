// Package store holds the passage store backends. A store owns indexed
// chunks and answers similarity searches ranked by descending relevance.
package store

import (
	"context"

	"knowledge-rag/internal/models"
)

// IndexFailure reports one chunk that could not be indexed. Indexing is
// per-item: a failed chunk never aborts the rest of the batch.
type IndexFailure struct {
	ID   string
	Name string
	Err  error
}

// Store is the passage store capability used by ingestion and retrieval.
type Store interface {
	Index(ctx context.Context, chunks []models.Chunk) []IndexFailure
	Search(ctx context.Context, query string, topK int) ([]models.Chunk, error)
}
