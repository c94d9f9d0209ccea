package repository

import (
	"context"
	"fmt"
	"maps"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// KnowledgeBase pairs an embedding service with a vector store.
type KnowledgeBase struct {
	embedder Embedder
	store    VectorStore
}

func NewKnowledgeBase(embedder Embedder, store VectorStore) *KnowledgeBase {
	return &KnowledgeBase{
		embedder: embedder,
		store:    store,
	}
}

func (kb *KnowledgeBase) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return kb.embedder.Embed(ctx, texts)
}

// SimilaritySearch returns up to k stored chunks closest to query, best
// first. The similarity is added to each chunk's metadata under "score".
func (kb *KnowledgeBase) SimilaritySearch(ctx context.Context, query string, k int) ([]entity.RAGChunk, error) {
	if k <= 0 {
		return []entity.RAGChunk{}, nil
	}

	vectors, err := kb.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for the query", entity.ErrCollaborator, len(vectors))
	}

	hits, err := kb.store.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("%w: search vector store: %w", entity.ErrCollaborator, err)
	}

	out := make([]entity.RAGChunk, len(hits))
	for i, hit := range hits {
		metadata := make(map[string]any, len(hit.Metadata)+1)
		maps.Copy(metadata, hit.Metadata)
		metadata[entity.MetadataScore] = hit.Score

		out[i] = entity.RAGChunk{ID: hit.ID, Content: hit.Content, Metadata: metadata}
	}

	ctxzap.Debug(ctx, "knowledge base searched", zap.Int("requested", k), zap.Int("found", len(out)))

	return out, nil
}

// Add embeds and stores chunks. Chunks with an existing id are replaced.
func (kb *KnowledgeBase) Add(ctx context.Context, chunks []entity.RAGChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := kb.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d chunks", entity.ErrCollaborator, len(vectors), len(chunks))
	}

	stored := make([]entity.StoredChunk, len(chunks))
	for i, c := range chunks {
		stored[i] = entity.StoredChunk{RAGChunk: c, Embedding: vectors[i]}
	}

	if err := kb.store.Upsert(ctx, stored); err != nil {
		return fmt.Errorf("%w: store chunks: %w", entity.ErrCollaborator, err)
	}

	return nil
}

func (kb *KnowledgeBase) Close() error {
	return kb.store.Close()
}
