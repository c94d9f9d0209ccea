package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/pkg/logger"
	"github.com/futig/planner-backend/internal/usecase/preprocess"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxSummarizationRounds caps how often one attachment goes through the
// summarize, clean, re-select loop. Once reached, text that still selects
// SUMMARIZE is kept as a single chunk.
const maxSummarizationRounds = 1

type Config struct {
	TopK                   int
	MaxParallelAttachments int
	SummaryMaxOutputTokens int
	Temperature            float64
}

// Orchestrator turns request attachments into chunks and splits the top_k
// retrieval budget between them and the knowledge base.
type Orchestrator struct {
	preprocessor  Preprocessor
	completer     Completer
	knowledgeBase KnowledgeBase
	ranker        *Ranker
	cfg           Config
}

func NewOrchestrator(
	preprocessor Preprocessor,
	completer Completer,
	knowledgeBase KnowledgeBase,
	cfg Config,
) *Orchestrator {
	if cfg.MaxParallelAttachments < 1 {
		cfg.MaxParallelAttachments = 1
	}

	return &Orchestrator{
		preprocessor:  preprocessor,
		completer:     completer,
		knowledgeBase: knowledgeBase,
		ranker:        NewRanker(knowledgeBase),
		cfg:           cfg,
	}
}

func (o *Orchestrator) TopK() int {
	return o.cfg.TopK
}

type attachmentOutcome struct {
	chunks []entity.RAGChunk
	err    error
}

// Retrieve preprocesses the attachments of req and selects at most top_k
// chunks in total. Collaborator failures abort only the affected attachment
// and are listed in the result; configuration errors fail the whole request.
func (o *Orchestrator) Retrieve(ctx context.Context, req *entity.QuestionRequest) (*entity.RetrievalResult, error) {
	ctx = logger.WithComponent(ctx, "retrieval")

	result := &entity.RetrievalResult{
		AttachmentChunks: []entity.RAGChunk{},
		KnowledgeChunks:  []entity.RAGChunk{},
	}

	var candidates []entity.RAGChunk
	if len(req.Attachments) > 0 {
		strategy, err := o.preprocessor.Strategy(o.preprocessor.MergeAttachments(req.Attachments), req.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("select strategy: %w", err)
		}
		result.Strategy = strategy

		ctxzap.Info(ctx, "preprocessing attachments",
			zap.String("strategy", strategy.String()),
			zap.Int("attachment_count", len(req.Attachments)),
		)

		outcomes, err := o.processAttachments(ctx, req.Attachments, strategy, req.MaxOutputTokens)
		if err != nil {
			return nil, err
		}

		for i, outcome := range outcomes {
			if outcome.err != nil {
				ctxzap.Warn(ctx, "attachment preprocessing failed",
					zap.String("file_name", req.Attachments[i].FileName),
					zap.Error(outcome.err),
				)
				result.Failures = append(result.Failures, entity.AttachmentFailure{
					FileName: req.Attachments[i].FileName,
					Error:    outcome.err.Error(),
				})
				continue
			}
			candidates = append(candidates, outcome.chunks...)
		}
	}

	if err := o.allocate(ctx, req.Prompt, candidates, result); err != nil {
		return nil, err
	}

	// Indexing runs after retrieval so a request never reads back its own attachments.
	o.index(ctx, candidates)

	ctxzap.Info(ctx, "retrieval completed",
		zap.Int("attachment_chunks", len(result.AttachmentChunks)),
		zap.Int("knowledge_chunks", len(result.KnowledgeChunks)),
		zap.Int("failed_attachments", len(result.Failures)),
	)

	return result, nil
}

func (o *Orchestrator) processAttachments(
	ctx context.Context,
	attachments []entity.Document,
	strategy entity.PreprocessStrategy,
	maxOutputTokens int,
) ([]attachmentOutcome, error) {
	outcomes := make([]attachmentOutcome, len(attachments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxParallelAttachments)

	for i, doc := range attachments {
		g.Go(func() error {
			segments, err := o.segments(gctx, doc.Content, strategy, maxOutputTokens, 0)
			if err != nil {
				if errors.Is(err, entity.ErrCollaborator) {
					outcomes[i].err = err
					return nil
				}
				return fmt.Errorf("preprocess attachment %q: %w", doc.FileName, err)
			}
			outcomes[i].chunks = materialize(doc.FileName, segments)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

func (o *Orchestrator) segments(
	ctx context.Context,
	text string,
	strategy entity.PreprocessStrategy,
	maxOutputTokens int,
	round int,
) ([]string, error) {
	switch strategy {
	case entity.StrategyChunk:
		// Chunks after the first carry overlap and may exceed the input budget
		// by up to the overlap size; the safety buffer absorbs that overrun.
		return o.preprocessor.Chunk(text, maxOutputTokens)
	case entity.StrategySummarize:
		if round >= maxSummarizationRounds {
			return []string{text}, nil
		}

		summary, err := o.summarize(ctx, text)
		if err != nil {
			return nil, err
		}

		next, err := o.preprocessor.Strategy(summary, maxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("select strategy for summary: %w", err)
		}
		return o.segments(ctx, summary, next, maxOutputTokens, round+1)
	default:
		return []string{text}, nil
	}
}

func (o *Orchestrator) summarize(ctx context.Context, text string) (string, error) {
	resp, err := o.completer.Complete(ctx, &entity.LLMRequest{
		UserPrompt:      text,
		SystemPrompt:    summarizePrompt,
		MaxOutputTokens: o.cfg.SummaryMaxOutputTokens,
		Temperature:     o.cfg.Temperature,
	})
	if err != nil {
		return "", collaboratorError("summarize attachment", err)
	}

	summary := preprocess.Clean(resp.Answer)
	if strings.TrimSpace(summary) == "" {
		return "", collaboratorError("summarize attachment", errors.New("summary is empty after cleaning"))
	}

	return summary, nil
}

func (o *Orchestrator) allocate(ctx context.Context, prompt string, candidates []entity.RAGChunk, result *entity.RetrievalResult) error {
	topK := o.cfg.TopK

	switch {
	case len(candidates) > topK:
		ranked, err := o.ranker.Rank(ctx, candidates, prompt, topK)
		if err != nil {
			return fmt.Errorf("rank attachment chunks: %w", err)
		}
		result.AttachmentChunks = ranked
	case len(candidates) == topK:
		result.AttachmentChunks = candidates
	default:
		if len(candidates) > 0 {
			result.AttachmentChunks = candidates
		}

		found, err := o.knowledgeBase.SimilaritySearch(ctx, prompt, topK-len(candidates))
		if err != nil {
			return collaboratorError("search knowledge base", err)
		}
		if len(found) > topK-len(candidates) {
			found = found[:topK-len(candidates)]
		}
		result.KnowledgeChunks = found
	}

	return nil
}

func (o *Orchestrator) index(ctx context.Context, chunks []entity.RAGChunk) {
	if len(chunks) == 0 {
		return
	}

	if err := o.knowledgeBase.Add(ctx, chunks); err != nil {
		ctxzap.Warn(ctx, "failed to index attachment chunks",
			zap.Int("chunk_count", len(chunks)),
			zap.Error(err),
		)
		return
	}

	ctxzap.Debug(ctx, "attachment chunks indexed", zap.Int("chunk_count", len(chunks)))
}

// materialize wraps non-empty segments into chunks numbered from zero.
func materialize(fileName string, segments []string) []entity.RAGChunk {
	chunks := make([]entity.RAGChunk, 0, len(segments))
	for _, segment := range segments {
		content := strings.TrimSpace(segment)
		if content == "" {
			continue
		}
		chunks = append(chunks, entity.RAGChunk{
			ID:      uuid.NewString(),
			Content: content,
			Metadata: map[string]any{
				entity.MetadataSourceID:   fileName,
				entity.MetadataChunkIndex: len(chunks),
			},
		})
	}
	return chunks
}

func collaboratorError(op string, err error) error {
	if errors.Is(err, entity.ErrCollaborator) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrCollaborator, op, err)
}
