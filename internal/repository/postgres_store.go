package repository

import (
	"context"
	"fmt"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore keeps chunks in the knowledge_chunks table created by the
// migrations. Embeddings are real[] columns scored in process.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const upsertChunkSQL = `INSERT INTO knowledge_chunks (id, content, metadata, embedding)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
	content = EXCLUDED.content,
	metadata = EXCLUDED.metadata,
	embedding = EXCLUDED.embedding`

func (s *PostgresStore) Upsert(ctx context.Context, chunks []entity.StoredChunk) error {
	batch := &pgx.Batch{}
	for _, c := range chunks {
		metadata := c.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		batch.Queue(upsertChunkSQL, c.ID, c.Content, metadata, c.Embedding)
	}

	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		ctxzap.Error(ctx, "failed to upsert knowledge chunks", zap.Int("chunk_count", len(chunks)), zap.Error(err))
		return fmt.Errorf("upsert chunks: %w", err)
	}

	return nil
}

func (s *PostgresStore) Search(ctx context.Context, query []float32, k int) ([]entity.ScoredChunk, error) {
	rows, err := s.db.Query(ctx, `SELECT id, content, metadata, embedding FROM knowledge_chunks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}

	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.StoredChunk, error) {
		var c entity.StoredChunk
		if err := row.Scan(&c.ID, &c.Content, &c.Metadata, &c.Embedding); err != nil {
			return c, err
		}
		normalizeMetadata(c.Metadata)
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}

	return topK(query, candidates, k), nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Close is a no-op; the pool is owned by the application.
func (s *PostgresStore) Close() error {
	return nil
}
