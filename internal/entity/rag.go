package entity

// Metadata keys always present on chunks materialized from an attachment.
const (
	MetadataSourceID   = "source_id"
	MetadataChunkIndex = "chunk_index"
	MetadataScore      = "score"
)

// RAGChunk is a bounded text segment with provenance metadata. Stores hand
// back MetadataChunkIndex as an int whatever their encoding.
type RAGChunk struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// SourceID returns the originating attachment name, if known.
func (c RAGChunk) SourceID() string {
	if v, ok := c.Metadata[MetadataSourceID].(string); ok {
		return v
	}
	return ""
}

// StoredChunk is a chunk together with its embedding as kept by a vector store.
type StoredChunk struct {
	RAGChunk
	Embedding []float32
}

// ScoredChunk is a search hit returned by a vector store.
type ScoredChunk struct {
	RAGChunk
	Score float64
}

// AttachmentFailure reports an attachment whose preprocessing was aborted.
type AttachmentFailure struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// RetrievalResult is the chunk set handed over to prompt assembly.
type RetrievalResult struct {
	Strategy         PreprocessStrategy
	AttachmentChunks []RAGChunk
	KnowledgeChunks  []RAGChunk
	Failures         []AttachmentFailure
}
