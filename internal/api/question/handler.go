package question

import (
	"context"
	"errors"
	"net/http"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/pkg/logger"
	"github.com/futig/planner-backend/internal/pkg/response"
	"github.com/futig/planner-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const exportBaseName = "plan"

type Handler struct {
	usecase   QuestionUsecase
	validator *validator.Validator
}

func NewHandler(usecase QuestionUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Awake handles GET /api/awake
func (h *Handler) Awake(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "alive"})
}

// Ask handles POST /api/ask
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	req, ok := h.readQuestion(ctx, w, r)
	if !ok {
		return
	}

	h.answer(ctx, w, req)
}

// AskUpload handles POST /api/ask/upload
func (h *Handler) AskUpload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AskUpload")

	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxUploadSize())
	if err := r.ParseMultipartForm(h.validator.MaxUploadSize()); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid form data or size too large", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	if err := h.validator.ValidateUpload(r.MultipartForm.File["attachments"]); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	req, err := fromMultipart(r.MultipartForm)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if err := h.validator.ValidateQuestion(req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "question uploaded", zap.Int("attachment_count", len(req.Attachments)))
	h.answer(ctx, w, req)
}

// AskStream handles POST /api/ask/stream
func (h *Handler) AskStream(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AskStream")

	req, ok := h.readQuestion(ctx, w, r)
	if !ok {
		return
	}

	stream, err := response.NewEventStream(w)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "streaming is not supported", err)
		return
	}

	records := 0
	err = h.usecase.AskStream(ctx, req, func(rec entity.QuestionResponse) error {
		records++
		return stream.Send(rec)
	})
	if err == nil {
		ctxzap.Info(ctx, "question streamed", zap.Int("records", records))
		return
	}

	if ctx.Err() != nil {
		ctxzap.Info(ctx, "client went away during stream", zap.Int("records", records), zap.Error(err))
		return
	}

	status, message := classify(err)
	if !stream.Started() {
		h.respondError(ctx, w, status, message, err)
		return
	}

	ctxzap.Error(ctx, "stream failed", zap.Int("records", records), zap.Error(err))
	if sendErr := stream.SendError(status, message); sendErr != nil {
		ctxzap.Warn(ctx, "failed to send stream error event", zap.Error(sendErr))
	}
}

// Export handles POST /api/ask/export?format=
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Export")

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	format := entity.ResultFormat(formatParam)
	if !format.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "format must be one of: markdown, docx, pdf", nil)
		return
	}
	ctx = logger.AddFields(ctx, zap.String("format", string(format)))

	req, ok := h.readQuestion(ctx, w, r)
	if !ok {
		return
	}

	file, err := h.usecase.Export(ctx, req, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "reply exported", zap.Int("bytes", len(file.Content)))
	response.File(w, file.ContentType, exportBaseName+file.Extension, file.Content)
}

func (h *Handler) readQuestion(ctx context.Context, w http.ResponseWriter, r *http.Request) (*entity.QuestionRequest, bool) {
	req, err := decodeQuestion(w, r, h.validator.MaxUploadSize())
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}

	if err := h.validator.ValidateQuestion(req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return nil, false
	}

	ctxzap.Debug(ctx, "question received",
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Int("attachment_count", len(req.Attachments)),
		zap.Int("max_output_tokens", req.MaxOutputTokens),
	)
	return req, true
}

func (h *Handler) answer(ctx context.Context, w http.ResponseWriter, req *entity.QuestionRequest) {
	resp, err := h.usecase.Ask(ctx, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := classify(err)
	h.respondError(ctx, w, status, message, err)
}

// classify maps an error class to a status code and client message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrValidation),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, entity.ErrConfiguration):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, entity.ErrCollaborator):
		return http.StatusBadGateway, "upstream service failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
