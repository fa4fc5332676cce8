package chunker

import (
	"fmt"
	"strings"

	"aptutor/internal/adapter/analyzer"
	"aptutor/internal/domain"
)

// WordChunker slides a fixed-size window of words over a document.
// Consecutive windows start chunkSize-overlap words apart.
type WordChunker struct {
	chunkSize int
	overlap   int
}

// NewWordChunker validates the window parameters up front so that a bad
// stride is reported before any document is touched.
func NewWordChunker(chunkSize, overlap int) (*WordChunker, error) {
	if err := domain.ValidateChunking(chunkSize, overlap); err != nil {
		return nil, err
	}
	return &WordChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Stride returns the distance in words between consecutive chunk starts.
func (c *WordChunker) Stride() int {
	return c.chunkSize - c.overlap
}

func (c *WordChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	words := analyzer.Words(doc.Text)
	if len(words) == 0 {
		return nil, nil
	}

	stride := c.Stride()
	chunks := make([]domain.Chunk, 0, len(words)/stride+1)

	for start := 0; start < len(words); start += stride {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}

		text := strings.Join(words[start:end], " ")
		if strings.TrimSpace(text) == "" {
			continue
		}

		seq := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:    ChunkID(doc.ID, seq),
			DocID: doc.ID,
			Seq:   seq,
			Text:  text,
		})
	}

	return chunks, nil
}

// ChunkID builds the identifier of the seq-th chunk of a document.
func ChunkID(docID string, seq int) string {
	return fmt.Sprintf("%s::chunk_%d", docID, seq)
}
