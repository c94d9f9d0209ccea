package question

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/pkg/document"
	"github.com/futig/planner-backend/internal/pkg/validator"
)

// decodeQuestion reads a JSON question body of at most maxBytes.
func decodeQuestion(w http.ResponseWriter, r *http.Request, maxBytes int64) (*entity.QuestionRequest, error) {
	var req entity.QuestionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes)).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", entity.ErrValidation, entity.ErrInvalidFormat, err)
	}
	return &req, nil
}

// fromMultipart builds a question from a parsed multipart form; uploaded
// files become attachments in form order.
func fromMultipart(form *multipart.Form) (*entity.QuestionRequest, error) {
	req := &entity.QuestionRequest{
		Prompt: formValue(form, "prompt"),
	}

	if ctxText := formValue(form, "context"); ctxText != "" {
		req.Context = &ctxText
	}

	if raw := formValue(form, "max_output_tokens"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %w: max_output_tokens %q is not an integer",
				entity.ErrValidation, entity.ErrInvalidParameter, raw)
		}
		req.MaxOutputTokens = n
	}

	for _, fh := range form.File["attachments"] {
		doc, err := readAttachment(fh)
		if err != nil {
			return nil, err
		}
		req.Attachments = append(req.Attachments, doc)
	}

	return req, nil
}

func readAttachment(fh *multipart.FileHeader) (entity.Document, error) {
	src, err := fh.Open()
	if err != nil {
		return entity.Document{}, fmt.Errorf("open file %s: %w", fh.Filename, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return entity.Document{}, fmt.Errorf("read file %s: %w", fh.Filename, err)
	}

	text, err := document.ExtractText(fh.Filename, content)
	if err != nil {
		return entity.Document{}, fmt.Errorf("%w: %w", entity.ErrValidation, err)
	}

	return entity.Document{
		FileName: validator.SanitizeFilename(fh.Filename),
		Content:  text,
	}, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}
