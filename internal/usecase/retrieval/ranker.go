package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/pkg/vector"
)

// Ranker orders chunks by cosine similarity of their embeddings to a query.
type Ranker struct {
	embedder Embedder
}

func NewRanker(embedder Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank returns at most topK chunks, best first. Equal scores keep input order.
func (r *Ranker) Rank(ctx context.Context, chunks []entity.RAGChunk, query string, topK int) ([]entity.RAGChunk, error) {
	if len(chunks) == 0 || topK <= 0 {
		return []entity.RAGChunk{}, nil
	}

	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, query)
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed chunks for ranking: %w", entity.ErrCollaborator, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d texts", entity.ErrCollaborator, len(vectors), len(texts))
	}

	queryVec := vectors[0]
	scored := make([]entity.ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = entity.ScoredChunk{RAGChunk: c, Score: vector.Cosine(queryVec, vectors[i+1])}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	n := min(topK, len(scored))
	out := make([]entity.RAGChunk, n)
	for i := range n {
		out[i] = scored[i].RAGChunk
	}

	return out, nil
}
