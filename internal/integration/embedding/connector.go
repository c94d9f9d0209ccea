package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/futig/planner-backend/internal/config"
	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/integration/common"
	pkgRetry "github.com/futig/planner-backend/internal/pkg/retry"
	pkghttp "github.com/futig/planner-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Connector calls an OpenAI compatible embeddings endpoint and caches
// vectors per input text.
type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	cache     *cache.Cache
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewServiceConnector("embedding", cfg.HTTPClientConfig, logger),
		config:    cfg,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheCleanupInterval),
		logger:    logger,
	}
}

// Embed returns one vector per text, in input order. Uncached texts are sent
// in batches of at most BatchSize; duplicates are embedded once.
func (c *Connector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	positions := make(map[string][]int)
	var pending []string
	for i, text := range texts {
		if v, ok := c.cache.Get(c.cacheKey(text)); ok {
			out[i] = v.([]float32)
			continue
		}
		if _, seen := positions[text]; !seen {
			pending = append(pending, text)
		}
		positions[text] = append(positions[text], i)
	}

	if len(pending) == 0 {
		return out, nil
	}

	ctxzap.Debug(ctx, "embedding texts",
		zap.Int("requested", len(texts)),
		zap.Int("uncached", len(pending)),
	)

	batchSize := max(c.config.BatchSize, 1)
	for start := 0; start < len(pending); start += batchSize {
		batch := pending[start:min(start+batchSize, len(pending))]

		vectors, err := c.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}

		for j, text := range batch {
			c.cache.SetDefault(c.cacheKey(text), vectors[j])
			for _, i := range positions[text] {
				out[i] = vectors[j]
			}
		}
	}

	return out, nil
}

func (c *Connector) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	req := &entity.EmbeddingRequest{Model: c.config.Model, Input: batch}

	var resp entity.EmbeddingResponse
	err := pkgRetry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable, func(ctx context.Context) error {
		resp = entity.EmbeddingResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request: %w", entity.ErrCollaborator, err)
	}

	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("%w: embeddings returned %d vectors for %d inputs", entity.ErrCollaborator, len(resp.Data), len(batch))
	}

	vectors := make([][]float32, len(batch))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(batch) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("%w: embeddings returned invalid index %d", entity.ErrCollaborator, d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}

func (c *Connector) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.config.Model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
