package preprocess

import (
	"fmt"
	"strings"

	"github.com/futig/planner-backend/internal/entity"
)

const (
	DefaultSafetyBufferTokens = 200
	DefaultOverlapTokens      = 100
)

// Config is the token budget model shared by strategy selection and chunking.
type Config struct {
	ModelMaxTokens     int
	SafetyBufferTokens int
	OverlapTokens      int
}

// Preprocessor decides how attachment text is prepared for retrieval and
// splits it into token-bounded chunks.
type Preprocessor struct {
	tokenizer          Tokenizer
	modelMaxTokens     int
	safetyBufferTokens int
	overlapTokens      int
}

func NewPreprocessor(tokenizer Tokenizer, cfg Config) *Preprocessor {
	return &Preprocessor{
		tokenizer:          tokenizer,
		modelMaxTokens:     cfg.ModelMaxTokens,
		safetyBufferTokens: cfg.SafetyBufferTokens,
		overlapTokens:      cfg.OverlapTokens,
	}
}

func (p *Preprocessor) ModelMaxTokens() int {
	return p.modelMaxTokens
}

// CountTokens returns the token count of text under the configured model.
func (p *Preprocessor) CountTokens(text string) int {
	return p.tokenizer.Count(text)
}

// MergeAttachments concatenates attachment contents, one per line.
func (p *Preprocessor) MergeAttachments(documents []entity.Document) string {
	parts := make([]string, 0, len(documents))
	for _, doc := range documents {
		parts = append(parts, doc.Content)
	}
	return strings.Join(parts, "\n")
}

// MaxInputTokens is the token budget left for a single chunk once the output
// reservation and the safety buffer are taken from the model window.
func (p *Preprocessor) MaxInputTokens(maxOutputTokens int) (int, error) {
	if maxOutputTokens <= 0 {
		return 0, fmt.Errorf("%w: max_output_tokens must be positive, got %d", entity.ErrInvalidParameter, maxOutputTokens)
	}

	budget := p.modelMaxTokens - maxOutputTokens - p.safetyBufferTokens
	if budget <= 0 {
		return 0, fmt.Errorf(
			"%w: no input budget left (model_max_tokens=%d, max_output_tokens=%d, safety_buffer_tokens=%d)",
			entity.ErrConfiguration, p.modelMaxTokens, maxOutputTokens, p.safetyBufferTokens,
		)
	}

	return budget, nil
}
