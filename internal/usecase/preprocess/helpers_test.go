package preprocess

import "strings"

// runeTokenizer counts one token per rune, which keeps budgets easy to reason about.
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

func newTestPreprocessor(modelMax, safety, overlap int) *Preprocessor {
	return NewPreprocessor(runeTokenizer{}, Config{
		ModelMaxTokens:     modelMax,
		SafetyBufferTokens: safety,
		OverlapTokens:      overlap,
	})
}
