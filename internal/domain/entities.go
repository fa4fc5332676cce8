package domain

// Document is a single source file whose text has been extracted.
// ID is the path relative to the resources directory.
type Document struct {
	ID   string
	Text string
}

type Chunk struct {
	ID    string
	DocID string
	Seq   int
	Text  string
}

type ScoredChunk struct {
	ChunkID string `json:"id"`
	Score   int    `json:"score"`
}

type Stats struct {
	TotalDocs   int `json:"total_docs"`
	TotalChunks int `json:"total_chunks"`
	TotalTokens int `json:"total_tokens"`
	SkippedDocs int `json:"skipped_docs"`
}
