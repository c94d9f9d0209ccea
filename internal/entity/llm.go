package entity

type LLMRequest struct {
	UserPrompt string
	// SystemPrompt is the role and instructions for the model.
	SystemPrompt string
	// Context is the free-text context received from the user.
	Context string
	// AdditionalContext is the data retrieved from attachments and the knowledge base.
	AdditionalContext string
	MaxOutputTokens   int
	Temperature       float64
}

type LLMResponse struct {
	Answer       string
	InputTokens  int
	OutputTokens int
}

// LLMStreamEvent is one element of a streamed completion. Exactly one of
// Delta, Done or Err is meaningful.
type LLMStreamEvent struct {
	Delta        string
	Done         bool
	InputTokens  int
	OutputTokens int
	Err          error
}

// Responses API wire format

type ResponsesRequest struct {
	Model           string  `json:"model"`
	Instructions    string  `json:"instructions,omitempty"`
	Input           string  `json:"input"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	Stream          bool    `json:"stream,omitempty"`
}

type ResponsesContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ResponsesOutput struct {
	Type    string             `json:"type"`
	Role    string             `json:"role"`
	Content []ResponsesContent `json:"content"`
}

type ResponsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ResponsesError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResponsesResponse struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	OutputText string            `json:"output_text,omitempty"`
	Output     []ResponsesOutput `json:"output"`
	Usage      *ResponsesUsage   `json:"usage,omitempty"`
	Error      *ResponsesError   `json:"error,omitempty"`
}

type ResponsesStreamEvent struct {
	Type     string             `json:"type"`
	Delta    string             `json:"delta,omitempty"`
	Message  string             `json:"message,omitempty"`
	Response *ResponsesResponse `json:"response,omitempty"`
}

// Embeddings API wire format

type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type EmbeddingResponse struct {
	Data []EmbeddingData `json:"data"`
}
