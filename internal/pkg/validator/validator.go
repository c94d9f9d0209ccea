package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/futig/planner-backend/internal/config"
	"github.com/futig/planner-backend/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".docx": true,
}

// Validator checks requests at the API boundary.
type Validator struct {
	cfg config.FileUploadConfig
}

func New(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateQuestion rejects requests the retrieval pipeline must never see.
func (v *Validator) ValidateQuestion(req *entity.QuestionRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return fmt.Errorf("%w: %w: prompt", entity.ErrValidation, entity.ErrMissingField)
	}

	if req.MaxOutputTokens <= 0 {
		return fmt.Errorf("%w: %w: max_output_tokens must be positive, got %d",
			entity.ErrValidation, entity.ErrInvalidParameter, req.MaxOutputTokens)
	}

	if len(req.Attachments) > v.cfg.MaxFileCount {
		return fmt.Errorf("%w: %w: maximum %d attachments allowed, got %d",
			entity.ErrValidation, entity.ErrTooManyFiles, v.cfg.MaxFileCount, len(req.Attachments))
	}

	var total int64
	for i, doc := range req.Attachments {
		if strings.TrimSpace(doc.FileName) == "" {
			return fmt.Errorf("%w: %w: attachments[%d].fileName", entity.ErrValidation, entity.ErrMissingField, i)
		}

		size := int64(len(doc.Content))
		if size > v.cfg.MaxFileSize {
			return fmt.Errorf("%w: %w: attachment '%s' is %d bytes (max %d)",
				entity.ErrValidation, entity.ErrFileTooLarge, doc.FileName, size, v.cfg.MaxFileSize)
		}
		total += size
	}

	if total > v.cfg.MaxTotalSize {
		return fmt.Errorf("%w: %w: attachments total %d bytes (max %d)",
			entity.ErrValidation, entity.ErrTotalSizeTooLarge, total, v.cfg.MaxTotalSize)
	}

	return nil
}

// ValidateUpload checks count, extension and size of uploaded files.
// An upload without files is valid.
func (v *Validator) ValidateUpload(files []*multipart.FileHeader) error {
	if len(files) > v.cfg.MaxFileCount {
		return fmt.Errorf("%w: %w: maximum %d files allowed, got %d",
			entity.ErrValidation, entity.ErrTooManyFiles, v.cfg.MaxFileCount, len(files))
	}

	var totalSize int64
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !AllowedExtensions[ext] {
			return fmt.Errorf("%w: %w: %q (allowed: txt, md, docx)", entity.ErrValidation, entity.ErrInvalidExtension, ext)
		}

		if fh.Size > v.cfg.MaxFileSize {
			return fmt.Errorf("%w: %w: file '%s' is %d bytes (max %d)",
				entity.ErrValidation, entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
		}

		totalSize += fh.Size
	}

	if totalSize > v.cfg.MaxTotalSize {
		return fmt.Errorf("%w: %w: total size is %d bytes (max %d)",
			entity.ErrValidation, entity.ErrTotalSizeTooLarge, totalSize, v.cfg.MaxTotalSize)
	}

	return nil
}

func (v *Validator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}

// SanitizeFilename strips directories and characters that break file names
// in attachment headers.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	replacer := strings.NewReplacer(
		" ", "_",
		"\"", "",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
