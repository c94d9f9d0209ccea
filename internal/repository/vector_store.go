package repository

import (
	"context"
	"sort"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/pkg/vector"
)

// VectorStore keeps chunks with their embeddings and answers nearest
// neighbour queries by cosine similarity.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []entity.StoredChunk) error
	Search(ctx context.Context, query []float32, k int) ([]entity.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// topK scores candidates against query and keeps the k best, stable on ties.
func topK(query []float32, candidates []entity.StoredChunk, k int) []entity.ScoredChunk {
	scored := make([]entity.ScoredChunk, len(candidates))
	for i, c := range candidates {
		scored[i] = entity.ScoredChunk{RAGChunk: c.RAGChunk, Score: vector.Cosine(query, c.Embedding)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// normalizeMetadata restores the chunk index as an int after a JSON round
// trip turned it into a float64.
func normalizeMetadata(metadata map[string]any) {
	if idx, ok := metadata[entity.MetadataChunkIndex].(float64); ok {
		metadata[entity.MetadataChunkIndex] = int(idx)
	}
}
