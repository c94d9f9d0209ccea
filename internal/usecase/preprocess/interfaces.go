package preprocess

// Tokenizer converts text to and from the token space of the target model.
// Decode(Encode(t)) must return t.
type Tokenizer interface {
	Count(text string) int
	Encode(text string) []int
	Decode(tokens []int) string
}
