package formatter

import (
	"bytes"
	"testing"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = "## Milestones\n- Draft scope\n- Review budget\n\nShip by May."

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	for _, format := range []entity.ResultFormat{entity.FormatMarkdown, entity.FormatDOCX, entity.FormatPDF} {
		fm, err := f.Create(format)
		require.NoError(t, err)
		assert.NotEmpty(t, fm.ContentType())
		assert.NotEmpty(t, fm.FileExtension())
	}

	_, err := f.Create("html")
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}

func TestSplitBlocks(t *testing.T) {
	got := splitBlocks(sampleReply)

	assert.Equal(t, []block{
		{kind: blockHeading, text: "Milestones"},
		{kind: blockBullet, text: "Draft scope"},
		{kind: blockBullet, text: "Review budget"},
		{kind: blockText, text: "Ship by May."},
	}, got)
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleReply + "\n")
	require.NoError(t, err)
	assert.Equal(t, "# Plan\n\n"+sampleReply+"\n", string(out))
}

func TestMarkdownFormatter_KeepsOwnTitle(t *testing.T) {
	out, err := NewMarkdownFormatter().Format("# Launch plan\r\n\r\n- ship\r\n")
	require.NoError(t, err)
	assert.Equal(t, "# Launch plan\n\n- ship\n", string(out))
}

func TestPDFFormatter(t *testing.T) {
	out, err := NewPDFFormatter().Format(sampleReply)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
