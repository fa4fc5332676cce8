package cli

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"aptutor/config"
	"aptutor/internal/adapter/cache"
	"aptutor/internal/adapter/chunker"
	"aptutor/internal/adapter/fs"
	"aptutor/internal/adapter/loader"
	"aptutor/internal/adapter/memstore"
	"aptutor/internal/adapter/retriever"
	"aptutor/internal/adapter/store"
	"aptutor/internal/metrics"
	"aptutor/internal/port"
	"aptutor/internal/usecase"
)

// tutor is everything built at startup: the loaded corpus, its index and
// the retrieval stack over it.
type tutor struct {
	load     *loader.LoadResult
	build    *usecase.IndexResult
	index    *memstore.Index
	retrieve *usecase.RetrieveUseCase
	metrics  *metrics.Metrics
	resource string
	elapsed  time.Duration
}

// bootstrap loads the resources directory, builds the index and wires the
// retriever. The index lives only in memory; the extraction cache only
// saves re-parsing unchanged files.
func bootstrap(ctx context.Context, showProgress bool) (*tutor, error) {
	cfg := GetConfig()
	root := GetRootDir()
	start := time.Now()

	resource := cfg.ResourcePath(root)
	info, err := os.Stat(resource)
	if err != nil {
		return nil, fmt.Errorf("resource directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("resource path is not a directory: %s", resource)
	}

	var textCache loader.TextCache
	if cfg.Index.CacheText {
		if err := config.EnsureStateDir(root); err != nil {
			return nil, fmt.Errorf("failed to create .aptutor directory: %w", err)
		}
		st, err := store.NewBoltStore(config.ExtractDBPath(root))
		if err != nil {
			return nil, fmt.Errorf("failed to open extraction cache: %w", err)
		}
		defer st.Close()
		textCache = st
	}

	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	ld := loader.NewLoader(walker, loader.DefaultExtractors(), textCache, component("loader"))

	var progress loader.ProgressFunc
	if showProgress {
		progress = newProgress("Loading")
	}
	loaded, err := ld.Load(ctx, resource, progress)
	if err != nil {
		return nil, fmt.Errorf("loading failed: %w", err)
	}

	chk, err := chunker.NewWordChunker(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	built, err := usecase.NewIndexUseCase(chk, cfg.Index.Workers, component("indexer")).Build(ctx, loaded.Documents)
	if err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}

	m := metrics.New()
	m.SetIndexStats(built.Index.Stats())

	var r port.Retriever = retriever.NewOverlapRetriever(built.Index)
	if cfg.Retrieve.CacheSize > 0 {
		cached := cache.NewCachedRetriever(r, cache.NewQueryCache(cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL))
		m.RegisterCache(cached.Cache())
		r = cached
	}

	return &tutor{
		load:     loaded,
		build:    built,
		index:    built.Index,
		retrieve: usecase.NewRetrieveUseCase(r, built.Index, m),
		metrics:  m,
		resource: resource,
		elapsed:  time.Since(start),
	}, nil
}

// warnings returns every per-document problem from loading and indexing.
func (t *tutor) warnings() []string {
	out := make([]string, 0, len(t.load.Errors)+len(t.build.Errors))
	out = append(out, t.load.Errors...)
	return append(out, t.build.Errors...)
}

func newProgress(label string) loader.ProgressFunc {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(processed, total int, current string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		_ = bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", label, formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
