package preprocess

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	paragraphSeparator = "\n\n"
	sentenceSeparator  = " "
	overlapSeparator   = "\n"
)

var (
	paragraphBoundary = regexp.MustCompile(`\n\s*\n`)
	sentenceBoundary  = regexp.MustCompile(`[.!?]\s+`)
)

// Chunk splits text into pieces that each fit the input budget derived from
// maxOutputTokens, using the configured overlap.
func (p *Preprocessor) Chunk(text string, maxOutputTokens int) ([]string, error) {
	return p.ChunkWithOverlap(text, maxOutputTokens, p.overlapTokens)
}

// ChunkWithOverlap splits text on paragraphs, falling back to sentences and
// then to raw token windows for pieces that exceed the budget on their own.
// Chunk i > 0 is prefixed with the trailing overlapTokens tokens of chunk i-1.
func (p *Preprocessor) ChunkWithOverlap(text string, maxOutputTokens, overlapTokens int) ([]string, error) {
	limit, err := p.MaxInputTokens(maxOutputTokens)
	if err != nil {
		return nil, err
	}

	text = strings.ToValidUTF8(text, "")

	b := &chunkBuilder{tokenizer: p.tokenizer, limit: limit}
	for _, paragraph := range splitParagraphs(text) {
		if p.tokenizer.Count(paragraph) <= limit {
			b.add(paragraph, paragraphSeparator)
			continue
		}

		sep := paragraphSeparator
		for _, sentence := range splitSentences(paragraph) {
			if p.tokenizer.Count(sentence) > limit {
				b.flush()
				b.addWindows(sentence)
			} else {
				b.add(sentence, sep)
			}
			sep = sentenceSeparator
		}
	}
	b.flush()

	return p.applyOverlap(b.chunks, overlapTokens), nil
}

func (p *Preprocessor) applyOverlap(chunks []string, overlapTokens int) []string {
	if overlapTokens <= 0 || len(chunks) < 2 {
		return chunks
	}

	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		out[i] = decodeTail(p.tokenizer, p.tokenizer.Encode(chunks[i-1]), overlapTokens) + overlapSeparator + chunks[i]
	}

	return out
}

// decodeTail decodes at most the last n tokens. Byte-level tokens may split a
// character, so leading tokens are dropped until the text starts on a
// character boundary.
func decodeTail(tok Tokenizer, tokens []int, n int) string {
	for start := max(len(tokens)-n, 0); start < len(tokens); start++ {
		if text := tok.Decode(tokens[start:]); utf8.ValidString(text) {
			return text
		}
	}
	return ""
}

type chunkBuilder struct {
	tokenizer Tokenizer
	limit     int
	chunks    []string
	current   string
}

// add appends piece to the pending chunk, starting a new one when the joined
// text would exceed the limit. piece itself must fit.
func (b *chunkBuilder) add(piece, sep string) {
	if b.current == "" {
		b.current = piece
		return
	}

	candidate := b.current + sep + piece
	if b.tokenizer.Count(candidate) > b.limit {
		b.flush()
		b.current = piece
		return
	}

	b.current = candidate
}

func (b *chunkBuilder) addWindows(text string) {
	tokens := b.tokenizer.Encode(text)
	for start := 0; start < len(tokens); {
		end := b.windowEnd(tokens, start)
		b.chunks = append(b.chunks, b.tokenizer.Decode(tokens[start:end]))
		start = end
	}
}

// windowEnd returns the largest end within the limit at which the window
// decodes to whole characters. A character wider than the whole limit is
// kept in one window that runs past it.
func (b *chunkBuilder) windowEnd(tokens []int, start int) int {
	limitEnd := min(start+b.limit, len(tokens))
	for end := limitEnd; end > start; end-- {
		if utf8.ValidString(b.tokenizer.Decode(tokens[start:end])) {
			return end
		}
	}
	for end := limitEnd + 1; end < len(tokens); end++ {
		if utf8.ValidString(b.tokenizer.Decode(tokens[start:end])) {
			return end
		}
	}
	return len(tokens)
}

func (b *chunkBuilder) flush() {
	if b.current != "" {
		b.chunks = append(b.chunks, b.current)
		b.current = ""
	}
}

func splitParagraphs(text string) []string {
	var out []string
	for _, part := range paragraphBoundary.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitSentences splits after terminal punctuation followed by whitespace,
// keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
