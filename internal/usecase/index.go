package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"aptutor/internal/adapter/analyzer"
	"aptutor/internal/adapter/chunker"
	"aptutor/internal/adapter/memstore"
	"aptutor/internal/domain"
	"aptutor/internal/port"
)

// IndexUseCase builds the in-memory index from loaded documents.
type IndexUseCase struct {
	chunker port.Chunker
	workers int
	log     *logrus.Entry
}

// NewIndexUseCase creates a new index use case. workers bounds how many
// documents are chunked and tokenized at once.
func NewIndexUseCase(chunker port.Chunker, workers int, log *logrus.Entry) *IndexUseCase {
	if workers <= 0 {
		workers = 1
	}
	return &IndexUseCase{
		chunker: chunker,
		workers: workers,
		log:     log,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	Index  *memstore.Index
	Errors []string
}

// Build chunks and tokenizes every document, then merges the results into
// a single immutable index. A document that fails is skipped and reported
// in Errors; the build only fails if ctx is cancelled.
func (u *IndexUseCase) Build(ctx context.Context, docs []domain.Document) (*IndexResult, error) {
	result := &IndexResult{}
	builder := memstore.NewBuilder()

	if len(docs) == 0 {
		u.log.WithError(domain.ErrEmptyCorpus).Warn("no documents to index, all questions will be answered without context")
		result.Index = builder.Build()
		return result, nil
	}

	entries := make([]*memstore.DocumentEntry, len(docs))
	errs := make([]error, len(docs))

	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		if _, dup := seen[doc.ID]; dup {
			errs[i] = errors.New("duplicate document id")
			continue
		}
		seen[doc.ID] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	for i := range docs {
		if errs[i] != nil {
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := u.indexDocument(docs[i])
			if err != nil {
				errs[i] = err
				return nil
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge on this goroutine only; the builder is not safe for concurrent use.
	for i, doc := range docs {
		if errs[i] != nil {
			u.log.WithError(errs[i]).WithField("document", doc.ID).Warn("skipping document")
			result.Errors = append(result.Errors, fmt.Sprintf("failed to index %s: %v", doc.ID, errs[i]))
			builder.Skip()
			continue
		}
		builder.Add(*entries[i])
	}

	result.Index = builder.Build()

	stats := result.Index.Stats()
	u.log.WithFields(logrus.Fields{
		"documents": stats.TotalDocs,
		"chunks":    stats.TotalChunks,
		"tokens":    stats.TotalTokens,
		"skipped":   stats.SkippedDocs,
	}).Info("index built")

	return result, nil
}

// indexDocument chunks one document and tokenizes its chunks.
func (u *IndexUseCase) indexDocument(doc domain.Document) (*memstore.DocumentEntry, error) {
	chunks, err := u.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk content: %w", err)
	}

	entry := &memstore.DocumentEntry{
		DocID:  doc.ID,
		Chunks: chunks,
		Tokens: make([]analyzer.TokenSet, len(chunks)),
	}
	for i, chunk := range chunks {
		entry.Tokens[i] = analyzer.Tokenize(chunk.Text)
	}
	return entry, nil
}

// BuildIndex indexes a mapping of document id to text with the given
// window. An invalid window is reported before any document is read.
func BuildIndex(documents map[string]string, chunkSize, overlap int) (*memstore.Index, error) {
	chk, err := chunker.NewWordChunker(chunkSize, overlap)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(documents))
	for id, text := range documents {
		docs = append(docs, domain.Document{ID: id, Text: text})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	result, err := NewIndexUseCase(chk, runtime.NumCPU(), logrus.NewEntry(logger)).Build(context.Background(), docs)
	if err != nil {
		return nil, err
	}
	return result.Index, nil
}
