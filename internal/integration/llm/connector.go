package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/futig/planner-backend/internal/config"
	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/integration/common"
	pkgRetry "github.com/futig/planner-backend/internal/pkg/retry"
	pkghttp "github.com/futig/planner-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	eventOutputTextDelta = "response.output_text.delta"
	eventCompleted       = "response.completed"
	eventFailed          = "response.failed"
	eventError           = "error"

	outputTypeText = "output_text"
)

// Connector talks to an OpenAI compatible Responses API.
type Connector struct {
	config    config.LLMConnectorConfig
	model     string
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	model string,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewServiceConnector("llm", cfg.HTTPClientConfig, logger),
		config:    cfg,
		model:     model,
		logger:    logger,
	}
}

// Complete sends one completion request. Transport failures and temporary
// statuses are retried per the connector retry policy.
func (c *Connector) Complete(ctx context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error) {
	ctxzap.Debug(ctx, "requesting completion",
		zap.String("model", c.model),
		zap.Int("max_output_tokens", req.MaxOutputTokens),
	)

	body := c.newResponsesRequest(req, false)

	var resp entity.ResponsesResponse
	err := pkgRetry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable, func(ctx context.Context) error {
		resp = entity.ResponsesResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.ResponsesEndpoint, body, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: responses request: %w", entity.ErrCollaborator, err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: responses error %s: %s", entity.ErrCollaborator, resp.Error.Code, resp.Error.Message)
	}

	out := &entity.LLMResponse{Answer: extractAnswer(&resp)}
	if resp.Usage != nil {
		out.InputTokens = resp.Usage.InputTokens
		out.OutputTokens = resp.Usage.OutputTokens
	}

	ctxzap.Info(ctx, "completion received",
		zap.Int("input_tokens", out.InputTokens),
		zap.Int("output_tokens", out.OutputTokens),
		zap.Int("answer_length", len(out.Answer)),
	)

	return out, nil
}

// Stream opens a streamed completion. Only opening the stream is retried.
// The returned channel is closed when the upstream ends or ctx is done.
func (c *Connector) Stream(ctx context.Context, req *entity.LLMRequest) (<-chan entity.LLMStreamEvent, error) {
	ctxzap.Debug(ctx, "opening completion stream", zap.String("model", c.model))

	body := c.newResponsesRequest(req, true)

	var stream io.ReadCloser
	err := pkgRetry.Do(ctx, &c.config.Retry, pkghttp.IsRetryable, func(ctx context.Context) error {
		var err error
		stream, err = c.connector.DoStream(ctx, http.MethodPost, c.config.ResponsesEndpoint, body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open responses stream: %w", entity.ErrCollaborator, err)
	}

	events := make(chan entity.LLMStreamEvent)
	go c.pump(ctx, stream, events)

	return events, nil
}

func (c *Connector) pump(ctx context.Context, stream io.ReadCloser, out chan<- entity.LLMStreamEvent) {
	defer close(out)
	defer stream.Close()

	send := func(ev entity.LLMStreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error) {
		send(entity.LLMStreamEvent{Err: fmt.Errorf("%w: %w", entity.ErrCollaborator, err)})
	}

	reader := pkghttp.NewSSEReader(stream)
	for {
		sse, err := reader.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				fail(fmt.Errorf("read responses stream: %w", err))
			}
			return
		}

		if sse.Data == "[DONE]" {
			continue
		}

		var ev entity.ResponsesStreamEvent
		if err := json.Unmarshal([]byte(sse.Data), &ev); err != nil {
			fail(fmt.Errorf("decode stream event: %w", err))
			return
		}

		switch ev.Type {
		case eventOutputTextDelta:
			if ev.Delta != "" && !send(entity.LLMStreamEvent{Delta: ev.Delta}) {
				return
			}
		case eventCompleted:
			done := entity.LLMStreamEvent{Done: true}
			if ev.Response != nil && ev.Response.Usage != nil {
				done.InputTokens = ev.Response.Usage.InputTokens
				done.OutputTokens = ev.Response.Usage.OutputTokens
			}
			send(done)
			return
		case eventError:
			fail(fmt.Errorf("responses stream error: %s", ev.Message))
			return
		case eventFailed:
			msg := "response failed"
			if ev.Response != nil && ev.Response.Error != nil {
				msg = ev.Response.Error.Message
			}
			fail(errors.New(msg))
			return
		}
	}
}

func (c *Connector) newResponsesRequest(req *entity.LLMRequest, stream bool) *entity.ResponsesRequest {
	return &entity.ResponsesRequest{
		Model:           c.model,
		Instructions:    buildInstructions(req),
		Input:           req.UserPrompt,
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
		Stream:          stream,
	}
}

func buildInstructions(req *entity.LLMRequest) string {
	var b strings.Builder
	b.WriteString(req.SystemPrompt)

	if req.Context != "" {
		b.WriteString("\nUser context:\n")
		b.WriteString(req.Context)
	}

	if req.AdditionalContext != "" {
		b.WriteString("\nRelevant data:\n")
		b.WriteString(req.AdditionalContext)
	}

	return b.String()
}

// extractAnswer prefers the aggregated output_text and falls back to the
// text parts of the output items.
func extractAnswer(resp *entity.ResponsesResponse) string {
	if resp.OutputText != "" {
		return strings.TrimSpace(resp.OutputText)
	}

	var b strings.Builder
	for _, item := range resp.Output {
		for _, part := range item.Content {
			if part.Type == outputTypeText {
				b.WriteString(part.Text)
			}
		}
	}

	return strings.TrimSpace(b.String())
}
