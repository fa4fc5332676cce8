package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aptutor/internal/adapter/llm"
	"aptutor/internal/prompt"
	"aptutor/internal/usecase"
)

var askShowContext bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Long: `Retrieve context for the question, send the augmented prompt to the
configured chat model and print its answer. The API key is read from the
environment variable named by llm.api_key_env (OPENROUTER_API_KEY).

Examples:
  aptutor ask "what is the role of chlorophyll?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print whether retrieved context was used")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty")
	}

	t, err := bootstrap(cmd.Context(), false)
	if err != nil {
		return err
	}
	asker, err := newAsker(t)
	if err != nil {
		return err
	}

	answer, err := asker.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}

	if askShowContext {
		fmt.Printf("[model: %s, used context: %v]\n\n", answer.Model, answer.UsedContext)
	}
	fmt.Println(answer.Text)
	return nil
}

func newAsker(t *tutor) (*usecase.AskUseCase, error) {
	lc := GetConfig().LLM
	client, err := llm.NewOpenRouterClient(lc.APIKeyEnv, llm.Options{
		BaseURL:           lc.BaseURL,
		Model:             lc.Model,
		Timeout:           lc.Timeout,
		RequestsPerMinute: lc.RequestsPerMinute,
	})
	if err != nil {
		return nil, err
	}

	prompts, err := prompt.NewBuilder()
	if err != nil {
		return nil, err
	}

	return usecase.NewAskUseCase(
		t.retrieve,
		client,
		prompts,
		GetConfig().Retrieve.MaxChunks,
		t.metrics,
		component("ask"),
	), nil
}
