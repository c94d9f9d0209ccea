package entity

// Document is an attachment sent along with a question.
type Document struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

type QuestionRequest struct {
	Prompt          string     `json:"prompt"`
	Context         *string    `json:"context,omitempty"`
	Attachments     []Document `json:"attachments,omitempty"`
	MaxOutputTokens int        `json:"max_output_tokens"`
}

// ContextText returns the optional free-text context or an empty string.
func (r *QuestionRequest) ContextText() string {
	if r.Context == nil {
		return ""
	}
	return *r.Context
}

type QuestionResponse struct {
	Reply        string `json:"reply"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// ExportedFile is a reply rendered into a downloadable document.
type ExportedFile struct {
	Content     []byte
	ContentType string
	Extension   string
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
