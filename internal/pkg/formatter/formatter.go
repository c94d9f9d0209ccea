package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/planner-backend/internal/entity"
)

const baseTitle = "Plan"

type Formatter interface {
	Format(reply string) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

type blockKind int

const (
	blockText blockKind = iota
	blockHeading
	blockBullet
)

type block struct {
	kind blockKind
	text string
}

// splitBlocks reads the light markdown a planner reply is written in:
// "#" headings, "-"/"*" bullets and plain lines.
func splitBlocks(reply string) []block {
	var blocks []block
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			blocks = append(blocks, block{kind: blockHeading, text: strings.TrimSpace(strings.TrimLeft(line, "#"))})
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			blocks = append(blocks, block{kind: blockBullet, text: strings.TrimSpace(line[2:])})
		default:
			blocks = append(blocks, block{kind: blockText, text: line})
		}
	}
	return blocks
}
