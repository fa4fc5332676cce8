package port

import "aptutor/internal/domain"

// Retriever defines the interface for searching indexed content.
type Retriever interface {
	// Search returns at most k chunks, best first. It never fails.
	Search(query string, k int) []domain.ScoredChunk
}
