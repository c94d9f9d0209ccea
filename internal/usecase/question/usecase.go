package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QuestionUsecase answers planning questions over retrieved context.
type QuestionUsecase struct {
	retriever   Retriever
	llm         LLMConnector
	formatters  FormatterFactory
	temperature float64
}

func NewUsecase(
	retriever Retriever,
	llm LLMConnector,
	formatters FormatterFactory,
	temperature float64,
) *QuestionUsecase {
	return &QuestionUsecase{
		retriever:   retriever,
		llm:         llm,
		formatters:  formatters,
		temperature: temperature,
	}
}

// Ask runs retrieval and a single completion. A failing completion call does
// not fail the request: the reply carries the error text with zero token counts.
func (uc *QuestionUsecase) Ask(ctx context.Context, req *entity.QuestionRequest) (*entity.QuestionResponse, error) {
	llmReq, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := uc.llm.Complete(ctx, llmReq)
	if err != nil {
		ctxzap.Error(ctx, "completion failed", zap.Error(err))
		return &entity.QuestionResponse{
			Reply: fmt.Sprintf("Error calling LLM service: %v", err),
		}, nil
	}

	ctxzap.Info(ctx, "question answered",
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens),
	)

	return toQuestionResponse(resp), nil
}

// AskStream pushes each answer delta through emit as it arrives and finishes
// with a record carrying the token totals. A failing stream ends early with an
// error; an emit error or a cancelled ctx stops consumption of the upstream.
func (uc *QuestionUsecase) AskStream(
	ctx context.Context,
	req *entity.QuestionRequest,
	emit func(entity.QuestionResponse) error,
) error {
	llmReq, err := uc.prepare(ctx, req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := uc.llm.Stream(ctx, llmReq)
	if err != nil {
		return collaboratorError("start completion stream", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return collaboratorError("completion stream", errors.New("stream closed before completion"))
			}

			switch {
			case ev.Err != nil:
				return collaboratorError("completion stream", ev.Err)
			case ev.Done:
				ctxzap.Info(ctx, "question streamed",
					zap.Int("input_tokens", ev.InputTokens),
					zap.Int("output_tokens", ev.OutputTokens),
				)
				return emit(entity.QuestionResponse{
					InputTokens:  ev.InputTokens,
					OutputTokens: ev.OutputTokens,
				})
			case ev.Delta != "":
				if err := emit(entity.QuestionResponse{Reply: ev.Delta}); err != nil {
					return err
				}
			}
		}
	}
}

// Export answers the question and renders the reply in the requested format.
func (uc *QuestionUsecase) Export(ctx context.Context, req *entity.QuestionRequest, format entity.ResultFormat) (*entity.ExportedFile, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	resp, err := uc.Ask(ctx, req)
	if err != nil {
		return nil, err
	}

	content, err := f.Format(resp.Reply)
	if err != nil {
		return nil, fmt.Errorf("format reply as %s: %w", format, err)
	}

	return &entity.ExportedFile{
		Content:     content,
		ContentType: f.ContentType(),
		Extension:   f.FileExtension(),
	}, nil
}

func (uc *QuestionUsecase) prepare(ctx context.Context, req *entity.QuestionRequest) (*entity.LLMRequest, error) {
	retrieved, err := uc.retriever.Retrieve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	chunks := make([]entity.RAGChunk, 0, len(retrieved.AttachmentChunks)+len(retrieved.KnowledgeChunks))
	chunks = append(chunks, retrieved.AttachmentChunks...)
	chunks = append(chunks, retrieved.KnowledgeChunks...)

	return &entity.LLMRequest{
		UserPrompt:        req.Prompt,
		SystemPrompt:      plannerPrompt,
		Context:           req.ContextText(),
		AdditionalContext: buildContext(chunks, uc.retriever.TopK()),
		MaxOutputTokens:   req.MaxOutputTokens,
		Temperature:       uc.temperature,
	}, nil
}

// buildContext numbers up to maxChunks non-empty chunks as "[Source i]" blocks.
func buildContext(chunks []entity.RAGChunk, maxChunks int) string {
	var blocks []string
	for _, c := range chunks[:min(maxChunks, len(chunks))] {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[Source %d]\n%s", len(blocks)+1, c.Content))
	}
	return strings.Join(blocks, "\n\n")
}

func toQuestionResponse(resp *entity.LLMResponse) *entity.QuestionResponse {
	return &entity.QuestionResponse{
		Reply:        resp.Answer,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}
}

func collaboratorError(op string, err error) error {
	if errors.Is(err, entity.ErrCollaborator) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrCollaborator, op, err)
}
