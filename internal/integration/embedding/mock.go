package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const MockDimension = 64

// MockConnector embeds texts as hashed bag-of-words vectors, so texts sharing
// words are similar and identical texts embed identically.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding texts", zap.Int("count", len(texts)))

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashedBagOfWords(text)
	}
	return out, nil
}

func hashedBagOfWords(text string) []float32 {
	v := make([]float32, MockDimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%MockDimension]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}
