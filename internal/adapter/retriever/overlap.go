package retriever

import (
	"sort"

	"aptutor/internal/adapter/analyzer"
	"aptutor/internal/adapter/memstore"
	"aptutor/internal/domain"
)

// OverlapRetriever scores a chunk by the number of distinct query tokens it
// contains. Term frequency and chunk length are deliberately ignored.
type OverlapRetriever struct {
	index *memstore.Index
}

func NewOverlapRetriever(index *memstore.Index) *OverlapRetriever {
	return &OverlapRetriever{index: index}
}

// Search returns at most k chunks ordered by score descending, then by
// chunk id ascending.
func (r *OverlapRetriever) Search(query string, k int) []domain.ScoredChunk {
	if k <= 0 {
		return nil
	}

	chunkScores := make(map[string]int)
	for token := range analyzer.Tokenize(query) {
		r.index.EachPosting(token, func(chunkID string) {
			chunkScores[chunkID]++
		})
	}

	if len(chunkScores) == 0 {
		return nil
	}

	results := make([]domain.ScoredChunk, 0, len(chunkScores))
	for chunkID, score := range chunkScores {
		results = append(results, domain.ScoredChunk{ChunkID: chunkID, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > k {
		results = results[:k]
	}

	return results
}
