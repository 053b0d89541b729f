package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillboard/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	answer string
	err    error
	model  string
	prompt string
	wait   time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.model = model
	f.prompt = prompt
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

type fixedLister []string

func (l fixedLister) ListModels(ctx context.Context) ([]string, error) { return l, nil }

func newTestAssistant(gen llm.Generator, cfg AssistantConfig) *Assistant {
	resolver := llm.NewResolver(fixedLister{"models/gemini-1.5-flash"}, "", "")
	return NewAssistant(gen, resolver, cfg, nil)
}

func TestAssistant_Ask(t *testing.T) {
	table := loadTestTable(t)
	gen := &fakeGenerator{answer: "1. Learn SQL"}
	a := newTestAssistant(gen, AssistantConfig{ContextRows: 2})

	answer, err := a.Ask(context.Background(), table, "python")
	require.NoError(t, err)

	assert.Equal(t, "1. Learn SQL", answer.Text)
	assert.Equal(t, "models/gemini-1.5-flash", answer.Model)
	assert.Equal(t, "models/gemini-1.5-flash", gen.model)
	assert.Len(t, answer.Context, 2)
	assert.Equal(t, gen.prompt, answer.Prompt)
	assert.Contains(t, gen.prompt, "Create a roadmap for python")
	assert.Contains(t, gen.prompt, "python => sql")
}

func TestAssistant_FallsBackToConsequents(t *testing.T) {
	table := loadTestTable(t)
	a := newTestAssistant(&fakeGenerator{answer: "ok"}, AssistantConfig{})

	rows := a.MatchingRows(table, "tableau")
	require.Len(t, rows, 1)
	assert.Equal(t, "frozenset({'tableau'})", rows[0].Consequents)

	assert.Empty(t, a.MatchingRows(table, "astronaut"))
	assert.Nil(t, a.MatchingRows(nil, "python"))
}

func TestAssistant_NoMatchesStillAsks(t *testing.T) {
	table := loadTestTable(t)
	gen := &fakeGenerator{answer: "ok"}
	a := newTestAssistant(gen, AssistantConfig{})

	answer, err := a.Ask(context.Background(), table, "astronaut")
	require.NoError(t, err)
	assert.Empty(t, answer.Context)
	assert.Equal(t, "Create a roadmap for astronaut", gen.prompt)
}

func TestAssistant_EmptyQuery(t *testing.T) {
	a := newTestAssistant(&fakeGenerator{}, AssistantConfig{})
	_, err := a.Ask(context.Background(), loadTestTable(t), "   ")
	assert.True(t, errors.Is(err, ErrEmptyQuery))
}

func TestAssistant_RemoteFailure(t *testing.T) {
	cause := errors.New("404 model not found")
	a := newTestAssistant(&fakeGenerator{err: cause}, AssistantConfig{})

	_, err := a.Ask(context.Background(), loadTestTable(t), "python")
	require.Error(t, err)

	var rce *RemoteCallError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, "models/gemini-1.5-flash", rce.Model)
	assert.Equal(t, BillingHint, rce.Hint)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "404 model not found")
}

func TestAssistant_Timeout(t *testing.T) {
	a := newTestAssistant(&fakeGenerator{answer: "late", wait: time.Second}, AssistantConfig{Timeout: 10 * time.Millisecond})

	_, err := a.Ask(context.Background(), loadTestTable(t), "python")
	var rce *RemoteCallError
	require.True(t, errors.As(err, &rce))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAssistant_NoGenerator(t *testing.T) {
	a := newTestAssistant(nil, AssistantConfig{})

	_, err := a.Ask(context.Background(), loadTestTable(t), "python")
	var rce *RemoteCallError
	assert.True(t, errors.As(err, &rce))
}
