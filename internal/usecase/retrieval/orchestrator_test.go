package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testModelMax = 100
	testMaxOut   = 20
)

func newTestOrchestrator(safety int, completer *fakeCompleter, kb *fakeKnowledgeBase) *Orchestrator {
	if completer == nil {
		completer = &fakeCompleter{complete: func(*entity.LLMRequest) (*entity.LLMResponse, error) {
			return nil, errors.New("unexpected completion call")
		}}
	}
	return NewOrchestrator(newTestPreprocessor(testModelMax, safety), completer, kb, Config{
		TopK:                   5,
		MaxParallelAttachments: 2,
		SummaryMaxOutputTokens: 64,
		Temperature:            0.2,
	})
}

func request(attachments ...entity.Document) *entity.QuestionRequest {
	return &entity.QuestionRequest{
		Prompt:          "alpha launch plan",
		Attachments:     attachments,
		MaxOutputTokens: testMaxOut,
	}
}

func doc(name, content string) entity.Document {
	return entity.Document{FileName: name, Content: content}
}

func paragraphs(width int, count int) string {
	parts := make([]string, count)
	for i := range parts {
		label := fmt.Sprintf("%02d", i)
		parts[i] = label + strings.Repeat("p", width-len(label))
	}
	return strings.Join(parts, "\n\n")
}

func TestRetrieve_DirectAttachment(t *testing.T) {
	kb := &fakeKnowledgeBase{available: 4}
	o := newTestOrchestrator(10, nil, kb)
	content := strings.Repeat("d", 50)

	res, err := o.Retrieve(context.Background(), request(doc("notes.txt", content)))
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyDirect, res.Strategy)
	require.Len(t, res.AttachmentChunks, 1)
	assert.Equal(t, content, res.AttachmentChunks[0].Content)
	assert.Equal(t, "notes.txt", res.AttachmentChunks[0].SourceID())
	assert.Equal(t, 0, res.AttachmentChunks[0].Metadata[entity.MetadataChunkIndex])

	require.Len(t, kb.searches, 1)
	assert.Equal(t, searchCall{query: "alpha launch plan", k: 4}, kb.searches[0])
	assert.Len(t, res.KnowledgeChunks, 4)
}

func TestRetrieve_ChunkedAttachment(t *testing.T) {
	kb := &fakeKnowledgeBase{}
	o := newTestOrchestrator(10, nil, kb)
	content := paragraphs(28, 2) + "\n\n" + strings.Repeat("q", 30)
	require.Len(t, []rune(content), 90)

	res, err := o.Retrieve(context.Background(), request(doc("plan.md", content)))
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyChunk, res.Strategy)
	require.Len(t, res.AttachmentChunks, 2)
	for i, c := range res.AttachmentChunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), testModelMax-testMaxOut-10)
		assert.Equal(t, i, c.Metadata[entity.MetadataChunkIndex])
	}
}

func TestRetrieve_SummarizedAttachment(t *testing.T) {
	completer := &fakeCompleter{complete: answer("## Summary\n- **Key** point one.\nWant more?")}
	o := newTestOrchestrator(10, completer, &fakeKnowledgeBase{})
	content := strings.Repeat("s", 5000)

	res, err := o.Retrieve(context.Background(), request(doc("big.txt", content)))
	require.NoError(t, err)

	assert.Equal(t, entity.StrategySummarize, res.Strategy)
	require.Equal(t, 1, completer.calls())
	assert.Equal(t, summarizePrompt, completer.requests[0].SystemPrompt)
	assert.Equal(t, content, completer.requests[0].UserPrompt)
	assert.Equal(t, 64, completer.requests[0].MaxOutputTokens)

	require.Len(t, res.AttachmentChunks, 1)
	assert.Equal(t, "Summary\nKey point one.", res.AttachmentChunks[0].Content)
}

func TestRetrieve_SummaryStillTooLargeIsKeptWhole(t *testing.T) {
	summary := strings.Repeat("b", 5000)
	completer := &fakeCompleter{complete: answer(summary)}
	o := newTestOrchestrator(10, completer, &fakeKnowledgeBase{})

	res, err := o.Retrieve(context.Background(), request(doc("big.txt", strings.Repeat("s", 5000))))
	require.NoError(t, err)

	assert.Equal(t, 1, completer.calls())
	require.Len(t, res.AttachmentChunks, 1)
	assert.Equal(t, summary, res.AttachmentChunks[0].Content)
}

func TestRetrieve_SummaryIsChunked(t *testing.T) {
	completer := &fakeCompleter{complete: answer(paragraphs(28, 5))}
	o := newTestOrchestrator(10, completer, &fakeKnowledgeBase{})

	res, err := o.Retrieve(context.Background(), request(doc("big.txt", strings.Repeat("s", 5000))))
	require.NoError(t, err)

	require.Len(t, res.AttachmentChunks, 3)
	for i, c := range res.AttachmentChunks {
		assert.Equal(t, "big.txt", c.SourceID())
		assert.Equal(t, i, c.Metadata[entity.MetadataChunkIndex])
	}
}

func TestRetrieve_MoreChunksThanBudgetAreRanked(t *testing.T) {
	kb := &fakeKnowledgeBase{available: 10}
	o := newTestOrchestrator(50, nil, kb)

	res, err := o.Retrieve(context.Background(), request(
		doc("a.md", paragraphs(20, 3)),
		doc("b.md", paragraphs(20, 2)),
		doc("c.md", paragraphs(20, 2)),
	))
	require.NoError(t, err)

	assert.Equal(t, entity.StrategyChunk, res.Strategy)
	assert.Len(t, res.AttachmentChunks, 5)
	assert.Empty(t, res.KnowledgeChunks)
	assert.Empty(t, kb.searches)
	assert.Len(t, kb.added, 7)
}

func TestRetrieve_FewerChunksThanBudgetQueryKnowledgeBase(t *testing.T) {
	kb := &fakeKnowledgeBase{available: 3}
	o := newTestOrchestrator(10, nil, kb)

	res, err := o.Retrieve(context.Background(), request(
		doc("a.txt", "alpha plan"),
		doc("b.txt", "beta plan"),
		doc("c.txt", "   "),
	))
	require.NoError(t, err)

	assert.Len(t, res.AttachmentChunks, 2)
	require.Len(t, kb.searches, 1)
	assert.Equal(t, 3, kb.searches[0].k)
	assert.Len(t, res.KnowledgeChunks, 3)
}

func TestRetrieve_ExactBudgetSkipsKnowledgeBase(t *testing.T) {
	kb := &fakeKnowledgeBase{available: 5}
	o := newTestOrchestrator(10, nil, kb)

	docs := make([]entity.Document, 5)
	for i := range docs {
		docs[i] = doc(fmt.Sprintf("%d.txt", i), fmt.Sprintf("item %d", i))
	}

	res, err := o.Retrieve(context.Background(), request(docs...))
	require.NoError(t, err)

	assert.Len(t, res.AttachmentChunks, 5)
	assert.Empty(t, res.KnowledgeChunks)
	assert.Empty(t, kb.searches)
}

func TestRetrieve_BudgetNeverExceeded(t *testing.T) {
	for n := 0; n <= 8; n++ {
		t.Run(fmt.Sprintf("%d attachments", n), func(t *testing.T) {
			kb := &fakeKnowledgeBase{available: 10}
			o := newTestOrchestrator(10, nil, kb)

			docs := make([]entity.Document, n)
			for i := range docs {
				docs[i] = doc(fmt.Sprintf("%d.txt", i), fmt.Sprintf("i%d", i))
			}

			res, err := o.Retrieve(context.Background(), request(docs...))
			require.NoError(t, err)
			assert.LessOrEqual(t, len(res.AttachmentChunks)+len(res.KnowledgeChunks), o.TopK())
		})
	}
}

func TestRetrieve_NoAttachments(t *testing.T) {
	kb := &fakeKnowledgeBase{available: 5}
	o := newTestOrchestrator(10, nil, kb)

	res, err := o.Retrieve(context.Background(), request())
	require.NoError(t, err)

	assert.Empty(t, res.AttachmentChunks)
	assert.Len(t, res.KnowledgeChunks, 5)
	assert.Equal(t, []string{"search"}, kb.events)
}

func TestRetrieve_SummarizationFailureIsIsolated(t *testing.T) {
	completer := &fakeCompleter{complete: func(req *entity.LLMRequest) (*entity.LLMResponse, error) {
		if strings.HasPrefix(req.UserPrompt, "x") {
			return nil, errors.New("upstream unavailable")
		}
		return &entity.LLMResponse{Answer: "Condensed notes."}, nil
	}}
	o := newTestOrchestrator(10, completer, &fakeKnowledgeBase{})

	res, err := o.Retrieve(context.Background(), request(
		doc("bad.txt", strings.Repeat("x", 3000)),
		doc("good.txt", strings.Repeat("y", 3000)),
	))
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "bad.txt", res.Failures[0].FileName)
	assert.Contains(t, res.Failures[0].Error, "upstream unavailable")

	require.Len(t, res.AttachmentChunks, 1)
	assert.Equal(t, "good.txt", res.AttachmentChunks[0].SourceID())
	assert.Equal(t, "Condensed notes.", res.AttachmentChunks[0].Content)
}

func TestRetrieve_EmptySummaryIsReportedAsFailure(t *testing.T) {
	for name, text := range map[string]string{
		"blank":    "  \n\n ",
		"stripped": "## Summary:\nWant more details?",
	} {
		t.Run(name, func(t *testing.T) {
			completer := &fakeCompleter{complete: answer(text)}
			o := newTestOrchestrator(10, completer, &fakeKnowledgeBase{})

			res, err := o.Retrieve(context.Background(), request(doc("big.txt", strings.Repeat("s", 5000))))
			require.NoError(t, err)

			assert.Empty(t, res.AttachmentChunks)
			require.Len(t, res.Failures, 1)
			assert.Equal(t, "big.txt", res.Failures[0].FileName)
			assert.Contains(t, res.Failures[0].Error, "summary is empty after cleaning")
		})
	}
}

func TestRetrieve_ConfigurationErrorIsFatal(t *testing.T) {
	o := newTestOrchestrator(50, nil, &fakeKnowledgeBase{})
	req := request(doc("a.txt", strings.Repeat("c", 100)))
	req.MaxOutputTokens = 60

	_, err := o.Retrieve(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestRetrieve_IndexesAfterSearch(t *testing.T) {
	kb := &fakeKnowledgeBase{available: 2}
	o := newTestOrchestrator(10, nil, kb)

	res, err := o.Retrieve(context.Background(), request(doc("a.txt", "alpha")))
	require.NoError(t, err)

	assert.Equal(t, []string{"search", "add"}, kb.events)
	require.Len(t, kb.added, 1)
	assert.Equal(t, res.AttachmentChunks[0].ID, kb.added[0].ID)
}

func TestRetrieve_IndexFailureIsNotFatal(t *testing.T) {
	kb := &fakeKnowledgeBase{available: 2, addErr: errors.New("disk full")}
	o := newTestOrchestrator(10, nil, kb)

	res, err := o.Retrieve(context.Background(), request(doc("a.txt", "alpha")))
	require.NoError(t, err)
	assert.Len(t, res.AttachmentChunks, 1)
}

func TestRetrieve_KnowledgeBaseFailure(t *testing.T) {
	kb := &fakeKnowledgeBase{searchErr: errors.New("store offline")}
	o := newTestOrchestrator(10, nil, kb)

	_, err := o.Retrieve(context.Background(), request(doc("a.txt", "alpha")))
	assert.ErrorIs(t, err, entity.ErrCollaborator)
}

func TestMaterialize(t *testing.T) {
	chunks := materialize("notes.txt", []string{" first ", "", "  \n ", "second"})

	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Content)
	assert.Equal(t, "second", chunks[1].Content)
	assert.Equal(t, 1, chunks[1].Metadata[entity.MetadataChunkIndex])
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
	for _, c := range chunks {
		_, err := uuid.Parse(c.ID)
		assert.NoError(t, err)
	}
}
