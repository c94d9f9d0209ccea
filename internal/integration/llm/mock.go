package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	mockPromptPreview   = 200
	mockMaxOutputTokens = 50
)

// MockConnector answers without calling any service. Answers and token counts
// depend only on the request.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error) {
	ctxzap.Info(ctx, "[MOCK] completion")

	answer := mockAnswer(req)
	return &entity.LLMResponse{
		Answer:       answer,
		InputTokens:  len(strings.Fields(buildInstructions(req))) + len(strings.Fields(req.UserPrompt)),
		OutputTokens: min(req.MaxOutputTokens, mockMaxOutputTokens),
	}, nil
}

func (m *MockConnector) Stream(ctx context.Context, req *entity.LLMRequest) (<-chan entity.LLMStreamEvent, error) {
	ctxzap.Info(ctx, "[MOCK] completion stream")

	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	events := make(chan entity.LLMStreamEvent)
	go func() {
		defer close(events)

		for _, word := range strings.SplitAfter(resp.Answer, " ") {
			select {
			case events <- entity.LLMStreamEvent{Delta: word}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case events <- entity.LLMStreamEvent{Done: true, InputTokens: resp.InputTokens, OutputTokens: resp.OutputTokens}:
		case <-ctx.Done():
		}
	}()

	return events, nil
}

func mockAnswer(req *entity.LLMRequest) string {
	prompt := req.UserPrompt
	if utf8.RuneCountInString(prompt) > mockPromptPreview {
		prompt = string([]rune(prompt)[:mockPromptPreview])
	}

	return fmt.Sprintf("[MOCK RESPONSE] Prompt: %s. Context: %t. Sources: %d.",
		strings.TrimSpace(prompt),
		req.Context != "",
		strings.Count(req.AdditionalContext, "[Source "),
	)
}
