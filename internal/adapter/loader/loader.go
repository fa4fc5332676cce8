package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"aptutor/internal/adapter/fs"
	"aptutor/internal/domain"
)

// TextCache stores extracted text between runs.
type TextCache interface {
	GetText(docID string, modTime, size int64) (string, bool, error)
	PutText(docID string, modTime, size int64, text string) error
	Prune(keep map[string]struct{}) (int, error)
}

// ProgressFunc is called after each file is processed.
type ProgressFunc func(processed, total int, current string)

// Loader discovers resource files and extracts their text.
type Loader struct {
	walker     *fs.Walker
	extractors map[string]Extractor
	cache      TextCache
	log        *logrus.Entry
}

func NewLoader(walker *fs.Walker, extractors map[string]Extractor, cache TextCache, log *logrus.Entry) *Loader {
	if extractors == nil {
		extractors = DefaultExtractors()
	}
	return &Loader{
		walker:     walker,
		extractors: extractors,
		cache:      cache,
		log:        log,
	}
}

// LoadResult contains the documents that loaded and what went wrong with
// the ones that did not.
type LoadResult struct {
	Documents   []domain.Document
	FilesSeen   int
	CacheHits   int
	CachePruned int
	Errors      []string
}

// Load walks root and extracts every matching file. A file that fails is
// recorded in Errors and skipped; only a failure to walk root is fatal.
func (l *Loader) Load(ctx context.Context, root string, progress ProgressFunc) (*LoadResult, error) {
	files, err := l.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &LoadResult{FilesSeen: len(files)}
	seen := make(map[string]struct{}, len(files))

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seen[file.RelPath] = struct{}{}
		doc, hit, err := l.loadFile(file)
		if err != nil {
			l.log.WithError(err).WithField("file", file.RelPath).Warn("skipping document")
			result.Errors = append(result.Errors, fmt.Sprintf("failed to load %s: %v", file.RelPath, err))
		} else {
			result.Documents = append(result.Documents, doc)
			if hit {
				result.CacheHits++
			}
		}

		if progress != nil {
			progress(i+1, len(files), file.RelPath)
		}
	}

	if l.cache != nil {
		pruned, err := l.cache.Prune(seen)
		if err != nil {
			l.log.WithError(err).Warn("failed to prune extraction cache")
		}
		result.CachePruned = pruned
	}

	l.log.WithFields(logrus.Fields{
		"files":      result.FilesSeen,
		"documents":  len(result.Documents),
		"cache_hits": result.CacheHits,
		"failed":     len(result.Errors),
	}).Info("documents loaded")

	return result, nil
}

func (l *Loader) loadFile(file fs.FileInfo) (domain.Document, bool, error) {
	ext := strings.ToLower(filepath.Ext(file.Path))
	extractor, ok := l.extractors[ext]
	if !ok {
		return domain.Document{}, false, fmt.Errorf("unsupported file type %q", ext)
	}

	if l.cache != nil {
		text, found, err := l.cache.GetText(file.RelPath, file.ModTime, file.Size)
		if err != nil {
			l.log.WithError(err).WithField("file", file.RelPath).Debug("extraction cache read failed")
		} else if found {
			return domain.Document{ID: file.RelPath, Text: text}, true, nil
		}
	}

	text, err := extractor.Extract(file.Path)
	if err != nil {
		return domain.Document{}, false, err
	}

	if l.cache != nil {
		if err := l.cache.PutText(file.RelPath, file.ModTime, file.Size, text); err != nil {
			l.log.WithError(err).WithField("file", file.RelPath).Debug("extraction cache write failed")
		}
	}

	return domain.Document{ID: file.RelPath, Text: text}, false, nil
}
