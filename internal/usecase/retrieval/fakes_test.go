package retrieval

import (
	"context"
	"strings"
	"sync"

	"github.com/futig/planner-backend/internal/entity"
	"github.com/futig/planner-backend/internal/usecase/preprocess"
)

type runeTokenizer struct{}

func (runeTokenizer) Count(text string) int { return len([]rune(text)) }

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	out := make([]int, len(runes))
	for i, r := range runes {
		out[i] = int(r)
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteRune(rune(t))
	}
	return b.String()
}

func newTestPreprocessor(modelMax, safety int) *preprocess.Preprocessor {
	return preprocess.NewPreprocessor(runeTokenizer{}, preprocess.Config{
		ModelMaxTokens:     modelMax,
		SafetyBufferTokens: safety,
	})
}

var vocabulary = []string{"alpha", "beta", "gamma", "delta", "launch", "budget"}

// keywordVector counts vocabulary words, so texts without any of them embed to zero.
func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(vocabulary))
	for i, word := range vocabulary {
		v[i] = float32(strings.Count(lower, word))
	}
	return v
}

type keywordEmbedder struct {
	err error
}

func (e *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t)
	}
	return out, nil
}

type searchCall struct {
	query string
	k     int
}

type fakeKnowledgeBase struct {
	keywordEmbedder

	mu        sync.Mutex
	events    []string
	searches  []searchCall
	added     []entity.RAGChunk
	available int
	addErr    error
	searchErr error
}

func (kb *fakeKnowledgeBase) SimilaritySearch(_ context.Context, query string, k int) ([]entity.RAGChunk, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.events = append(kb.events, "search")
	kb.searches = append(kb.searches, searchCall{query: query, k: k})
	if kb.searchErr != nil {
		return nil, kb.searchErr
	}

	out := make([]entity.RAGChunk, 0, kb.available)
	for i := range kb.available {
		out = append(out, entity.RAGChunk{
			ID:       "kb-" + string(rune('a'+i)),
			Content:  "stored knowledge",
			Metadata: map[string]any{entity.MetadataScore: 1.0},
		})
	}
	return out, nil
}

func (kb *fakeKnowledgeBase) Add(_ context.Context, chunks []entity.RAGChunk) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.events = append(kb.events, "add")
	if kb.addErr != nil {
		return kb.addErr
	}
	kb.added = append(kb.added, chunks...)
	return nil
}

type fakeCompleter struct {
	mu       sync.Mutex
	requests []*entity.LLMRequest
	complete func(req *entity.LLMRequest) (*entity.LLMResponse, error)
}

func (c *fakeCompleter) Complete(_ context.Context, req *entity.LLMRequest) (*entity.LLMResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	return c.complete(req)
}

func (c *fakeCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func answer(text string) func(*entity.LLMRequest) (*entity.LLMResponse, error) {
	return func(*entity.LLMRequest) (*entity.LLMResponse, error) {
		return &entity.LLMResponse{Answer: text}, nil
	}
}
