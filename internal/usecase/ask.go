package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"aptutor/internal/port"
	"aptutor/internal/prompt"
)

// CompletionObserver is notified after every completion call.
type CompletionObserver interface {
	ObserveCompletion(err error, elapsed time.Duration)
}

// AskUseCase answers a question: retrieve context, build the prompt,
// call the model.
type AskUseCase struct {
	retrieve  *RetrieveUseCase
	llm       port.LLM
	prompts   *prompt.Builder
	maxChunks int
	observer  CompletionObserver
	log       *logrus.Entry
}

// NewAskUseCase creates a new ask use case. observer may be nil.
func NewAskUseCase(
	retrieve *RetrieveUseCase,
	llm port.LLM,
	prompts *prompt.Builder,
	maxChunks int,
	observer CompletionObserver,
	log *logrus.Entry,
) *AskUseCase {
	return &AskUseCase{
		retrieve:  retrieve,
		llm:       llm,
		prompts:   prompts,
		maxChunks: maxChunks,
		observer:  observer,
		log:       log,
	}
}

// Answer is the model's reply to one question.
type Answer struct {
	RequestID   string `json:"request_id"`
	Question    string `json:"question"`
	Text        string `json:"answer"`
	UsedContext bool   `json:"used_context"`
	Model       string `json:"model"`
}

// Ask answers question. When no chunk matches, the model is asked to
// answer from general knowledge instead.
func (u *AskUseCase) Ask(ctx context.Context, question string) (*Answer, error) {
	answer := &Answer{
		RequestID: uuid.NewString(),
		Question:  question,
		Model:     u.llm.ModelName(),
	}
	log := u.log.WithField("request_id", answer.RequestID)

	contextText, found := u.retrieve.Context(question, u.maxChunks)
	answer.UsedContext = found
	log.WithField("used_context", found).Debug("context retrieved")

	p, err := u.prompts.Build(question, contextText, found)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := u.llm.Generate(ctx, p)
	elapsed := time.Since(start)
	if u.observer != nil {
		u.observer.ObserveCompletion(err, elapsed)
	}
	if err != nil {
		log.WithError(err).Warn("completion failed")
		return nil, fmt.Errorf("completion from %s failed: %w", answer.Model, err)
	}

	log.WithFields(logrus.Fields{
		"elapsed": elapsed.Round(time.Millisecond),
		"chars":   len(text),
	}).Info("question answered")

	answer.Text = text
	return answer, nil
}
