package formatter

import (
	"strings"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

// MarkdownFormatter returns the reply itself, which the planner already
// writes in markdown.
type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format normalizes line endings and adds a title unless the reply opens
// with a top-level heading of its own.
func (mf *MarkdownFormatter) Format(reply string) ([]byte, error) {
	body := strings.TrimSpace(strings.ReplaceAll(reply, "\r\n", "\n"))

	var sb strings.Builder
	if !strings.HasPrefix(body, "# ") {
		sb.WriteString("# " + baseTitle + "\n\n")
	}
	sb.WriteString(body)
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
