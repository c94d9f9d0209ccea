package retrieval

import (
	"context"

	"github.com/futig/planner-backend/internal/entity"
)

type Preprocessor interface {
	MergeAttachments(documents []entity.Document) string
	Strategy(text string, maxOutputTokens int) (entity.PreprocessStrategy, error)
	Chunk(text string, maxOutputTokens int) ([]string, error)
}

type Completer interface {
	Complete(ctx context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error)
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// KnowledgeBase is the durable chunk store queried for background knowledge.
type KnowledgeBase interface {
	Embedder
	SimilaritySearch(ctx context.Context, query string, k int) ([]entity.RAGChunk, error)
	Add(ctx context.Context, chunks []entity.RAGChunk) error
}
