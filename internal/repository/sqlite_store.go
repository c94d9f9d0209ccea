package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/futig/planner-backend/internal/entity"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS knowledge_chunks (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	embedding TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// SQLiteStore keeps chunks in a local SQLite file. Embeddings are stored as
// JSON text and searched by brute force.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the store at path, creating the file, its directory
// and the schema when missing.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create knowledge base directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create knowledge_chunks table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, chunks []entity.StoredChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO knowledge_chunks (id, content, metadata, embedding, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata of chunk %s: %w", c.ID, err)
		}
		embedding, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("encode embedding of chunk %s: %w", c.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, c.ID, c.Content, string(metadata), string(embedding), now); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Search(ctx context.Context, query []float32, k int) ([]entity.ScoredChunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content, metadata, embedding FROM knowledge_chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var candidates []entity.StoredChunk
	for rows.Next() {
		var (
			c                       entity.StoredChunk
			metadataJSON, embedJSON string
		)
		if err := rows.Scan(&c.ID, &c.Content, &metadataJSON, &embedJSON); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(embedJSON), &c.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding of chunk %s: %w", c.ID, err)
		}
		c.Metadata = map[string]any{}
		if err := json.Unmarshal([]byte(metadataJSON), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of chunk %s: %w", c.ID, err)
		}
		normalizeMetadata(c.Metadata)

		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	return topK(query, candidates, k), nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
