// Package tokenizer counts and slices text in the token space of a target model.
package tokenizer

import (
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

var loaderOnce sync.Once

// Tokenizer wraps a tiktoken encoding bound to one model. Token boundaries are
// model specific: a chunk sized under one model is not guaranteed to fit another.
type Tokenizer struct {
	model string
	enc   *tiktoken.Tiktoken
}

// New returns a Tokenizer for the named model. BPE ranks are loaded from the
// embedded offline loader so no network access is needed at runtime.
func New(model string) (*Tokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: encoding for model %q: %w", model, err)
	}

	return &Tokenizer{model: model, enc: enc}, nil
}

// Model returns the model identifier this tokenizer is bound to.
func (t *Tokenizer) Model() string {
	return t.model
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.Encode(text))
}

// Encode converts text to token ids. Special tokens are encoded as plain text.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.EncodeOrdinary(text)
}

// Decode converts token ids back to text.
func (t *Tokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
