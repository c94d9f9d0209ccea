package question

import (
	"context"

	"github.com/futig/planner-backend/internal/entity"
)

type QuestionUsecase interface {
	Ask(ctx context.Context, req *entity.QuestionRequest) (*entity.QuestionResponse, error)
	AskStream(ctx context.Context, req *entity.QuestionRequest, emit func(entity.QuestionResponse) error) error
	Export(ctx context.Context, req *entity.QuestionRequest, format entity.ResultFormat) (*entity.ExportedFile, error)
}
