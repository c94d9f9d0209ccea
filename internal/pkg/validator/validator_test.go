package validator

import (
	"mime/multipart"
	"strings"
	"testing"

	"github.com/futig/planner-backend/internal/config"
	"github.com/futig/planner-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func testValidator() *Validator {
	return New(config.FileUploadConfig{
		MaxFileSize:   10,
		MaxTotalSize:  15,
		MaxFileCount:  2,
		MaxUploadSize: 1024,
	})
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		req     entity.QuestionRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  entity.QuestionRequest{Prompt: "plan", MaxOutputTokens: 10, Attachments: []entity.Document{{FileName: "a.txt", Content: ""}}},
		},
		{
			name:    "blank prompt",
			req:     entity.QuestionRequest{Prompt: "  ", MaxOutputTokens: 10},
			wantErr: entity.ErrMissingField,
		},
		{
			name:    "zero max output tokens",
			req:     entity.QuestionRequest{Prompt: "plan"},
			wantErr: entity.ErrInvalidParameter,
		},
		{
			name:    "negative max output tokens",
			req:     entity.QuestionRequest{Prompt: "plan", MaxOutputTokens: -5},
			wantErr: entity.ErrInvalidParameter,
		},
		{
			name:    "attachment without name",
			req:     entity.QuestionRequest{Prompt: "plan", MaxOutputTokens: 10, Attachments: []entity.Document{{Content: "x"}}},
			wantErr: entity.ErrMissingField,
		},
		{
			name: "too many attachments",
			req: entity.QuestionRequest{Prompt: "plan", MaxOutputTokens: 10, Attachments: []entity.Document{
				{FileName: "a"}, {FileName: "b"}, {FileName: "c"},
			}},
			wantErr: entity.ErrTooManyFiles,
		},
		{
			name: "attachment too large",
			req: entity.QuestionRequest{Prompt: "plan", MaxOutputTokens: 10, Attachments: []entity.Document{
				{FileName: "a", Content: strings.Repeat("x", 11)},
			}},
			wantErr: entity.ErrFileTooLarge,
		},
		{
			name: "total too large",
			req: entity.QuestionRequest{Prompt: "plan", MaxOutputTokens: 10, Attachments: []entity.Document{
				{FileName: "a", Content: strings.Repeat("x", 8)},
				{FileName: "b", Content: strings.Repeat("x", 8)},
			}},
			wantErr: entity.ErrTotalSizeTooLarge,
		},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuestion(&tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestValidateUpload(t *testing.T) {
	v := testValidator()

	assert.NoError(t, v.ValidateUpload(nil))
	assert.NoError(t, v.ValidateUpload([]*multipart.FileHeader{{Filename: "notes.MD", Size: 5}}))

	err := v.ValidateUpload([]*multipart.FileHeader{{Filename: "image.png", Size: 1}})
	assert.ErrorIs(t, err, entity.ErrInvalidExtension)

	err = v.ValidateUpload([]*multipart.FileHeader{{Filename: "big.txt", Size: 11}})
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)

	err = v.ValidateUpload([]*multipart.FileHeader{{Filename: "a.txt", Size: 9}, {Filename: "b.txt", Size: 9}})
	assert.ErrorIs(t, err, entity.ErrTotalSizeTooLarge)

	err = v.ValidateUpload([]*multipart.FileHeader{{Filename: "a.txt"}, {Filename: "b.txt"}, {Filename: "c.txt"}})
	assert.ErrorIs(t, err, entity.ErrTooManyFiles)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "plan_v2.md", SanitizeFilename("../../tmp/plan (v2).md"))
	assert.Equal(t, "report.docx", SanitizeFilename(`C:\Users\me\report.docx`))
	assert.Equal(t, "ab.txt", SanitizeFilename(`a"b.txt`))
}
