package port

import "context"

// LLM represents a remote chat-completion model.
type LLM interface {
	// Generate sends prompt as a single user message and returns the reply.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
