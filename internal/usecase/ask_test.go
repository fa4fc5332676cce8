package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptutor/internal/adapter/retriever"
	"aptutor/internal/prompt"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) Generate(_ context.Context, p string) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func (f *fakeLLM) ModelName() string { return "fake-model" }

type completionRecorder struct {
	errs []error
}

func (r *completionRecorder) ObserveCompletion(err error, _ time.Duration) {
	r.errs = append(r.errs, err)
}

func newAsk(t *testing.T, llm *fakeLLM, rec *completionRecorder) *AskUseCase {
	t.Helper()
	idx := biologyIndex(t)
	prompts, err := prompt.NewBuilder()
	require.NoError(t, err)
	retrieve := NewRetrieveUseCase(retriever.NewOverlapRetriever(idx), idx, nil)
	// Avoid wrapping a nil *completionRecorder in a non-nil interface.
	var observer CompletionObserver
	if rec != nil {
		observer = rec
	}
	return NewAskUseCase(retrieve, llm, prompts, 3, observer, quietLog())
}

func TestAsk_WithContext(t *testing.T) {
	llm := &fakeLLM{reply: "Plants make sugar."}
	uc := newAsk(t, llm, nil)

	answer, err := uc.Ask(context.Background(), "How do plants eat?")
	require.NoError(t, err)

	assert.Equal(t, "Plants make sugar.", answer.Text)
	assert.True(t, answer.UsedContext)
	assert.Equal(t, "fake-model", answer.Model)
	assert.NotEmpty(t, answer.RequestID)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], plantsChunk)
	assert.Contains(t, llm.prompts[0], "Question: How do plants eat?")
}

func TestAsk_FallsBackToGeneralKnowledge(t *testing.T) {
	llm := &fakeLLM{reply: "A quasar is an active galactic nucleus."}
	uc := newAsk(t, llm, nil)

	answer, err := uc.Ask(context.Background(), "quasar?")
	require.NoError(t, err)

	assert.False(t, answer.UsedContext)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "no matching documents were found")
}

func TestAsk_CompletionError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	rec := &completionRecorder{}
	uc := newAsk(t, llm, rec)

	_, err := uc.Ask(context.Background(), "plants")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake-model")
	assert.ErrorIs(t, err, llm.err)
	require.Len(t, rec.errs, 1)
	assert.Error(t, rec.errs[0])
}
