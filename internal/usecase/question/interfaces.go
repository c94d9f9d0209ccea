package question

import (
	"context"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/pkg/formatter"
)

type Retriever interface {
	Retrieve(ctx context.Context, req *entity.QuestionRequest) (*entity.RetrievalResult, error)
	TopK() int
}

type LLMConnector interface {
	Complete(ctx context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error)
	Stream(ctx context.Context, req *entity.LLMRequest) (<-chan entity.LLMStreamEvent, error)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
