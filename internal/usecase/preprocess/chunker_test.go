package preprocess

import (
	"fmt"
	"strings"
	"testing"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// budget 100 - 40 - 10 = 50 tokens per chunk
const (
	testModelMax = 100
	testSafety   = 10
	testMaxOut   = 40
	testLimit    = 50
)

func TestChunk_EmptyText(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)

	chunks, err := p.Chunk("", testMaxOut)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = p.Chunk(" \n\n \n\n", testMaxOut)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_SmallTextIsSingleChunk(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)

	chunks, err := p.Chunk("  Plan the launch.  ", testMaxOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"Plan the launch."}, chunks)
}

func TestChunk_PacksParagraphs(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)
	p1 := strings.Repeat("a", 20)
	p2 := strings.Repeat("b", 20)
	p3 := strings.Repeat("c", 20)

	chunks, err := p.Chunk(p1+"\n\n"+p2+"\n\n"+p3, testMaxOut)
	require.NoError(t, err)
	assert.Equal(t, []string{p1 + "\n\n" + p2, p3}, chunks)
}

func TestChunk_WhitespaceOnlySeparatorLines(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)

	chunks, err := p.Chunk("one\n   \ntwo", testMaxOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"one\n\ntwo"}, chunks)
}

func TestChunk_SentenceFallback(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)
	s := strings.Repeat("a", 18) + "."
	paragraph := s + " " + s + " " + s

	chunks, err := p.Chunk(paragraph, testMaxOut)
	require.NoError(t, err)
	assert.Equal(t, []string{s + " " + s, s}, chunks)
}

func TestChunk_SentenceSplitKeepsPunctuation(t *testing.T) {
	got := splitSentences("Ship it!  Really? Yes.\nDone")
	assert.Equal(t, []string{"Ship it!", "Really?", "Yes.", "Done"}, got)

	assert.Equal(t, []string{"v1.2 is out"}, splitSentences("v1.2 is out"))
}

func TestChunk_TokenWindowFallbackPreservesOrder(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)
	word := strings.Repeat("x", 120)

	chunks, err := p.Chunk("intro\n\n"+word+"\n\noutro", testMaxOut)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"intro",
		strings.Repeat("x", 50),
		strings.Repeat("x", 50),
		strings.Repeat("x", 20),
		"outro",
	}, chunks)
}

func TestChunk_EveryChunkFitsBudget(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)

	var b strings.Builder
	for i := range 40 {
		fmt.Fprintf(&b, "Step %d covers item %d. ", i, i*7)
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
		if i%13 == 0 {
			b.WriteString(strings.Repeat("z", 30+i) + " ")
		}
	}

	chunks, err := p.Chunk(b.String(), testMaxOut)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, runeTokenizer{}.Count(c), testLimit, c)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunk_Overlap(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 5)
	p1 := strings.Repeat("a", 15) + "12345"
	p2 := strings.Repeat("b", 40)

	chunks, err := p.Chunk(p1+"\n\n"+p2, testMaxOut)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0])
	assert.Equal(t, "12345\n"+p2, chunks[1])
}

func TestChunk_OverlapLongerThanPreviousChunk(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)
	p1 := "short"
	p2 := strings.Repeat("b", 48)

	chunks, err := p.ChunkWithOverlap(p1+"\n\n"+p2, testMaxOut, 30)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "short", chunks[0])
	assert.Equal(t, "short\n"+p2, chunks[1])
}

func TestChunk_SingleChunkHasNoOverlap(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 10)

	chunks, err := p.Chunk("only one", testMaxOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, chunks)
}

func TestChunk_NoBudget(t *testing.T) {
	p := newTestPreprocessor(testModelMax, testSafety, 0)

	_, err := p.Chunk("text", 95)
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}
