package preprocess

import (
	"fmt"

	"github.com/futig/planner-backend/internal/entity"
)

// summarizeFactor is how many model windows of text make chunking impractical.
const summarizeFactor = 2

// SelectStrategy classifies a block of text by its token count. The first
// matching rule wins:
//  1. count + maxOutputTokens <= modelMaxTokens -> DIRECT
//  2. count > 2 * modelMaxTokens                -> SUMMARIZE
//  3. otherwise                                 -> CHUNK
func SelectStrategy(tokenCount, maxOutputTokens, modelMaxTokens int) (entity.PreprocessStrategy, error) {
	if maxOutputTokens <= 0 || modelMaxTokens <= 0 || tokenCount < 0 {
		return "", fmt.Errorf(
			"%w: token_count=%d max_output_tokens=%d model_max_tokens=%d",
			entity.ErrInvalidParameter, tokenCount, maxOutputTokens, modelMaxTokens,
		)
	}

	if tokenCount+maxOutputTokens <= modelMaxTokens {
		return entity.StrategyDirect, nil
	}

	if tokenCount > modelMaxTokens*summarizeFactor {
		return entity.StrategySummarize, nil
	}

	return entity.StrategyChunk, nil
}

// Strategy tokenizes text and selects its preprocessing strategy.
func (p *Preprocessor) Strategy(text string, maxOutputTokens int) (entity.PreprocessStrategy, error) {
	return SelectStrategy(p.tokenizer.Count(text), maxOutputTokens, p.modelMaxTokens)
}
