package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexListDocs bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the index and report statistics",
	Long: `Load every document in the resources directory, chunk and index it,
and report what was indexed. The index is kept in memory only; extracted
text is cached in .aptutor/extract.db so unchanged PDFs are not re-parsed.

Examples:
  aptutor index           # Index ./resources
  aptutor index --docs    # Also list chunks per document`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexListDocs, "docs", false, "list chunk counts per document")
}

func runIndex(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning %s...\n", GetConfig().ResourcePath(GetRootDir()))

	t, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}

	stats := t.index.Stats()
	fmt.Printf("\nIndexing complete in %s:\n", formatDuration(t.elapsed))
	fmt.Printf("  Files found:     %d\n", t.load.FilesSeen)
	fmt.Printf("  Cache hits:      %d\n", t.load.CacheHits)
	if t.load.CachePruned > 0 {
		fmt.Printf("  Cache pruned:    %d (removed)\n", t.load.CachePruned)
	}
	fmt.Printf("  Documents:       %d\n", stats.TotalDocs)
	fmt.Printf("  Chunks:          %d\n", stats.TotalChunks)
	fmt.Printf("  Distinct tokens: %d\n", stats.TotalTokens)
	fmt.Printf("  Skipped:         %d\n", len(t.load.Errors)+stats.SkippedDocs)

	if indexListDocs {
		fmt.Printf("\nDocuments:\n")
		for _, id := range t.index.DocIDs() {
			fmt.Printf("  %-50s %d chunks\n", id, len(t.index.ChunksByDoc(id)))
		}
	}

	if warnings := t.warnings(); len(warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	return nil
}
