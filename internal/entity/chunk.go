package entity

// Chunk is a bounded span of source text with its embedding vector.
// CharStart/CharEnd are rune offsets into the source document, so
// overlapping chunks can be stitched back into the original text.
type Chunk struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Ordinal   int       `json:"ordinal"`
	Text      string    `json:"text"`
	CharStart int       `json:"char_start"`
	CharEnd   int       `json:"char_end"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// RetrievalResult is a chunk scored against a query vector.
type RetrievalResult struct {
	Chunk Chunk
	Score float64
}
