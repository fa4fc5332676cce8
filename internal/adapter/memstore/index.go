package memstore

import (
	"maps"
	"sort"

	"aptutor/internal/adapter/analyzer"
	"aptutor/internal/domain"
)

// PostingSet is the set of chunk ids that contain a token.
type PostingSet map[string]struct{}

// Index is the inverted index plus chunk lookup. It is immutable once
// returned by Builder.Build, so any number of goroutines may read it
// without locking.
type Index struct {
	postings  map[string]PostingSet
	chunks    map[string]string
	docChunks map[string][]string
	stats     domain.Stats
}

// Postings returns a copy of the chunk ids indexed under token.
func (idx *Index) Postings(token string) (PostingSet, bool) {
	set, ok := idx.postings[token]
	if !ok {
		return nil, false
	}
	return maps.Clone(set), true
}

// EachPosting calls fn for every chunk id indexed under token and reports
// whether the token is indexed at all.
func (idx *Index) EachPosting(token string, fn func(chunkID string)) bool {
	set, ok := idx.postings[token]
	for id := range set {
		fn(id)
	}
	return ok
}

// ChunkText returns the text of a chunk.
func (idx *Index) ChunkText(id string) (string, bool) {
	text, ok := idx.chunks[id]
	return text, ok
}

// ChunksByDoc returns the chunk ids of a document in sequence order.
func (idx *Index) ChunksByDoc(docID string) []string {
	ids := idx.docChunks[docID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// DocIDs returns the ids of every indexed document, sorted.
func (idx *Index) DocIDs() []string {
	ids := make([]string, 0, len(idx.docChunks))
	for id := range idx.docChunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (idx *Index) Stats() domain.Stats {
	return idx.stats
}

// Builder accumulates chunks into a new Index. A Builder is not safe for
// concurrent use; parallel indexers produce per-document entries and hand
// them to a single goroutine that calls Add.
type Builder struct {
	idx *Index
}

func NewBuilder() *Builder {
	return &Builder{
		idx: &Index{
			postings:  make(map[string]PostingSet),
			chunks:    make(map[string]string),
			docChunks: make(map[string][]string),
		},
	}
}

// DocumentEntry is one document's contribution to the index.
type DocumentEntry struct {
	DocID  string
	Chunks []domain.Chunk
	Tokens []analyzer.TokenSet // Tokens[i] belongs to Chunks[i]
}

// Add merges a document's chunks into the index being built.
func (b *Builder) Add(entry DocumentEntry) {
	idx := b.idx
	if _, exists := idx.docChunks[entry.DocID]; !exists {
		idx.stats.TotalDocs++
		idx.docChunks[entry.DocID] = make([]string, 0, len(entry.Chunks))
	}

	for i, chunk := range entry.Chunks {
		idx.chunks[chunk.ID] = chunk.Text
		idx.docChunks[entry.DocID] = append(idx.docChunks[entry.DocID], chunk.ID)
		idx.stats.TotalChunks++

		for token := range entry.Tokens[i] {
			set, ok := idx.postings[token]
			if !ok {
				set = make(PostingSet)
				idx.postings[token] = set
			}
			set[chunk.ID] = struct{}{}
		}
	}
}

// Skip records a document that could not be indexed.
func (b *Builder) Skip() {
	b.idx.stats.SkippedDocs++
}

// Build finalizes the index. The Builder must not be used afterwards.
func (b *Builder) Build() *Index {
	idx := b.idx
	idx.stats.TotalTokens = len(idx.postings)
	b.idx = nil
	return idx
}
