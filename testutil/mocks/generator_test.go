package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BaSui01/senate/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ llm.Generator = (*MockGenerator)(nil)

func TestMockGenerator_ScriptThenFixed(t *testing.T) {
	g := NewMockGenerator().WithResponse("fixed").WithScript("one", "two")
	req := &llm.GenerateRequest{Backend: llm.BackendGPT4, Prompt: "p"}

	for _, want := range []string{"one", "two", "fixed"} {
		resp, err := g.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
	assert.Equal(t, 3, g.CallCount())

	last, ok := g.LastCall()
	require.True(t, ok)
	assert.Equal(t, "p", last.Request.Prompt)
}

func TestMockGenerator_Responder(t *testing.T) {
	g := NewMockGenerator().WithResponder(func(req *llm.GenerateRequest) string { return "re: " + req.Prompt })
	resp, err := g.Generate(context.Background(), &llm.GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "re: x", resp.Content)
}

func TestMockGenerator_Errors(t *testing.T) {
	boom := errors.New("boom")
	g := NewMockGenerator().WithError(boom)
	_, err := g.Generate(context.Background(), &llm.GenerateRequest{})
	assert.ErrorIs(t, err, boom)

	g = NewMockGenerator().WithFailAfter(1)
	_, err = g.Generate(context.Background(), &llm.GenerateRequest{})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), &llm.GenerateRequest{})
	assert.ErrorIs(t, err, ErrFailAfter)

	g.Reset()
	assert.Zero(t, g.CallCount())
}

func TestMockGenerator_DelayHonorsContext(t *testing.T) {
	g := NewMockGenerator().WithDelay(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, &llm.GenerateRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, g.CallCount())
}
