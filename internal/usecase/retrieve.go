package usecase

import (
	"strings"
	"time"

	"aptutor/internal/adapter/memstore"
	"aptutor/internal/adapter/retriever"
	"aptutor/internal/domain"
	"aptutor/internal/port"
)

// ContextSeparator is placed between chunk texts in a context string.
const ContextSeparator = "\n\n---\n\n"

// ChunkLookup resolves chunk ids to their text.
type ChunkLookup interface {
	ChunkText(id string) (string, bool)
}

// RetrievalObserver is notified after every context lookup.
type RetrievalObserver interface {
	ObserveRetrieval(found bool, elapsed time.Duration)
}

// RetrieveUseCase handles search and context assembly.
type RetrieveUseCase struct {
	retriever port.Retriever
	lookup    ChunkLookup
	observer  RetrievalObserver
}

// NewRetrieveUseCase creates a new retrieve use case. observer may be nil.
func NewRetrieveUseCase(retriever port.Retriever, lookup ChunkLookup, observer RetrievalObserver) *RetrieveUseCase {
	return &RetrieveUseCase{
		retriever: retriever,
		lookup:    lookup,
		observer:  observer,
	}
}

// Search returns the ranked chunk ids and scores for query.
func (u *RetrieveUseCase) Search(query string, maxChunks int) []domain.ScoredChunk {
	if maxChunks <= 0 {
		return nil
	}
	return u.retriever.Search(query, maxChunks)
}

// Context returns the text of the best maxChunks chunks joined by
// ContextSeparator. ok is false when nothing matched, which is distinct
// from a match whose text happens to be empty.
func (u *RetrieveUseCase) Context(query string, maxChunks int) (string, bool) {
	_, text, ok := u.Lookup(query, maxChunks)
	return text, ok
}

// Lookup scores query once and returns the ranked chunks together with
// their assembled context.
func (u *RetrieveUseCase) Lookup(query string, maxChunks int) ([]domain.ScoredChunk, string, bool) {
	start := time.Now()
	results := u.Search(query, maxChunks)
	text, ok := u.assemble(results)
	if u.observer != nil {
		u.observer.ObserveRetrieval(ok, time.Since(start))
	}
	return results, text, ok
}

func (u *RetrieveUseCase) assemble(results []domain.ScoredChunk) (string, bool) {
	if len(results) == 0 {
		return "", false
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		text, ok := u.lookup.ChunkText(r.ChunkID)
		if !ok {
			continue
		}
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return "", false
	}

	return strings.Join(texts, ContextSeparator), true
}

// Retrieve scores the chunks of index against query and returns the
// assembled context of the best maxChunks, or ok == false if none match.
func Retrieve(query string, index *memstore.Index, maxChunks int) (string, bool) {
	return NewRetrieveUseCase(retriever.NewOverlapRetriever(index), index, nil).Context(query, maxChunks)
}
