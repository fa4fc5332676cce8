package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryText   string
	queryTopK   int
	queryJSON   bool
	queryScores bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the context retrieved for a question",
	Long: `Retrieve the chunks that share the most words with a question and print
the context string the model would receive.

Examples:
  aptutor query -q "photosynthesis in plants"
  aptutor query -q "cell division" -k 5 --scores
  aptutor query -q "cell division" --json`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "max-chunks", "k", 0, "number of chunks (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryScores, "scores", false, "print chunk ids and scores instead of the context")
	queryCmd.MarkFlagRequired("query")
}

type queryOutput struct {
	Query   string      `json:"query"`
	Found   bool        `json:"found"`
	Context string      `json:"context,omitempty"`
	Chunks  interface{} `json:"chunks"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	t, err := bootstrap(cmd.Context(), false)
	if err != nil {
		return err
	}

	maxChunks := GetConfig().Retrieve.MaxChunks
	if queryTopK > 0 {
		maxChunks = queryTopK
	}

	scored, context, found := t.retrieve.Lookup(queryText, maxChunks)

	if queryJSON {
		out := queryOutput{Query: queryText, Found: found, Context: context, Chunks: scored}
		if scored == nil {
			out.Chunks = []struct{}{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if !found {
		fmt.Println("No relevant content found.")
		return nil
	}

	if queryScores {
		fmt.Printf("Found %d chunks for: %s\n\n", len(scored), queryText)
		for i, c := range scored {
			text, _ := t.index.ChunkText(c.ChunkID)
			fmt.Printf("--- [%d] %s (score: %d) ---\n", i+1, c.ChunkID, c.Score)
			fmt.Println(preview(text, 300))
			fmt.Println()
		}
		return nil
	}

	fmt.Println(context)
	return nil
}

func preview(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
