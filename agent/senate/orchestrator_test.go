package senate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/llm/tokenizer"
	"github.com/BaSui01/senate/persona"
	"github.com/BaSui01/senate/testutil/fixtures"
	"github.com/BaSui01/senate/testutil/mocks"
	"github.com/BaSui01/senate/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newOrchestrator(t *testing.T, ps []*persona.Persona, gen llm.Generator, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := New(NewAgents(ps, 0), gen, opts...)
	require.NoError(t, err)
	return o
}

func TestOrchestrator_ABScenario(t *testing.T) {
	gen := mocks.NewMockGenerator().WithScript("resp_A", "resp_B")
	o := newOrchestrator(t, fixtures.AB(), gen)

	a, ok := o.Find("A")
	require.True(t, ok)
	for _, u := range []string{"1", "2", "3", "4", "5", "6"} {
		a.Memory.Record("T", u)
	}
	assert.Equal(t, "2\n3\n4\n5\n6", a.Memory.Retrieve("T"))

	conv := o.Open("T")
	conv, turns, err := o.RunRound(context.Background(), conv, "")
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, "A [X]: resp_A", turns[0].Line())
	assert.Equal(t, "B [Y]: resp_B", turns[1].Line())
	assert.Equal(t, "T\n\nA [X]: resp_A\n\nB [Y]: resp_B", conv.Render())

	b, _ := o.Find("B")
	assert.Equal(t, []string{"3", "4", "5", "6", "resp_A"}, a.Memory.Entries("T"))
	assert.Equal(t, []string{"resp_B"}, b.Memory.Entries("T"))
}

func TestOrchestrator_LaterAgentsSeeEarlierTurns(t *testing.T) {
	gen := mocks.NewMockGenerator().WithScript("first", "second")
	o := newOrchestrator(t, fixtures.AB(), gen)

	_, _, err := o.RunRound(context.Background(), o.Open("T"), "")
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "T", calls[0].Request.Prompt)
	assert.Equal(t, "T\n\nA [X]: first", calls[1].Request.Prompt)
	assert.Equal(t, fixtures.Persona("B", "Y").Description(), calls[1].Request.System)
	assert.InDelta(t, 0.7, calls[0].Request.Temperature, 1e-6)
	assert.Equal(t, llm.BackendGPT4, calls[0].Request.Backend)
}

func TestOrchestrator_PromptIncludesMemoryAndHumanInput(t *testing.T) {
	gen := mocks.NewMockGenerator().WithScript("a1", "b1", "a2", "b2")
	o := newOrchestrator(t, fixtures.AB(), gen)

	conv := o.Open("T")
	_, _, err := o.RunRound(context.Background(), conv, "")
	require.NoError(t, err)
	_, _, err = o.RunRound(context.Background(), conv, "what about costs?")
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "a1\n\nT\n\nA [X]: a1\n\nB [Y]: b1\n\nwhat about costs?", calls[2].Request.Prompt)
	assert.Equal(t, "b1\n\nT\n\nA [X]: a1\n\nB [Y]: b1\n\nA [X]: a2\n\nwhat about costs?", calls[3].Request.Prompt)
	assert.Equal(t, 4, conv.Len())
}

func TestOrchestrator_NAgentsNTurns(t *testing.T) {
	ps := fixtures.Senate(7)
	gen := mocks.NewMockGenerator().WithResponder(func(req *llm.GenerateRequest) string {
		return "answer from " + strings.SplitN(strings.TrimPrefix(req.System, "You are Senator "), " ", 2)[0]
	})
	o := newOrchestrator(t, ps, gen)

	conv, turns, err := o.RunRound(context.Background(), o.Open("budget"), "")
	require.NoError(t, err)
	require.Len(t, turns, len(ps))
	for i, p := range ps {
		assert.Equal(t, p.Name, turns[i].Speaker)
		assert.Equal(t, "answer from "+p.Name, turns[i].Utterance)
		assert.False(t, turns[i].Directed)
		assert.NotEmpty(t, turns[i].ID)
		assert.Equal(t, 1, o.Agents()[i].Memory.Len("budget"))
	}
	assert.Equal(t, turns, conv.Turns())
}

func TestOrchestrator_UnsupportedBackendStopsRound(t *testing.T) {
	registry := llm.NewRegistry(nil)
	require.NoError(t, registry.Register(llm.BackendGPT4, mocks.NewMockGenerator().WithResponse("ok")))

	ps := []*persona.Persona{
		fixtures.Persona("A", "X"),
		fixtures.PersonaWithBackend("B", "Y", llm.BackendGPT4o),
		fixtures.Persona("C", "Z"),
	}
	o := newOrchestrator(t, ps, registry)

	conv, turns, err := o.RunRound(context.Background(), o.Open("T"), "")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedBackend))
	assert.Contains(t, err.Error(), "senator B")

	require.Len(t, turns, 1)
	assert.Equal(t, 1, conv.Len())
	c, _ := o.Find("c")
	assert.Zero(t, c.Memory.Len("T"), "agents after the failure never speak")
	b, _ := o.Find("b")
	assert.Zero(t, b.Memory.Len("T"))
}

func TestOrchestrator_GeneratorErrorNotRetried(t *testing.T) {
	boom := errors.New("upstream down")
	gen := mocks.NewMockGenerator().WithError(boom)
	o := newOrchestrator(t, fixtures.AB(), gen)

	_, _, err := o.RunRound(context.Background(), o.Open("T"), "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, gen.CallCount())
}

func TestOrchestrator_Ask(t *testing.T) {
	gen := mocks.NewMockGenerator().WithScript("a1", "b1", "directed")
	o := newOrchestrator(t, fixtures.AB(), gen)
	conv := o.Open("T")
	_, _, err := o.RunRound(context.Background(), conv, "")
	require.NoError(t, err)

	_, turn, err := o.Ask(context.Background(), conv, "  b ", "Why?")
	require.NoError(t, err)
	assert.Equal(t, "B", turn.Speaker)
	assert.True(t, turn.Directed)
	assert.Equal(t, "Why?", turn.Question)
	assert.Equal(t, "B [Y]: directed", conv.Turns()[2].Line())

	last, _ := gen.LastCall()
	assert.Equal(t, "b1\n\nT\n\nA [X]: a1\n\nB [Y]: b1\n\nWhy?", last.Request.Prompt)

	b, _ := o.Find("B")
	assert.Equal(t, []string{"b1", "directed"}, b.Memory.Entries("T"))
	a, _ := o.Find("A")
	assert.Equal(t, 1, a.Memory.Len("T"))
}

func TestOrchestrator_AskMissChangesNothing(t *testing.T) {
	gen := mocks.NewMockGenerator().WithScript("a1", "b1")
	o := newOrchestrator(t, fixtures.AB(), gen)
	conv := o.Open("T")
	_, _, err := o.RunRound(context.Background(), conv, "")
	require.NoError(t, err)
	before := conv.Render()

	_, _, err = o.Ask(context.Background(), conv, "Nobody", "Hello?")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrAgentNotFound))
	assert.True(t, types.IsRecoverable(err))

	assert.Equal(t, before, conv.Render())
	assert.Equal(t, 2, gen.CallCount())
	for _, a := range o.Agents() {
		assert.Equal(t, 1, a.Memory.Len("T"))
	}
}

func TestNew_Validation(t *testing.T) {
	gen := mocks.NewMockGenerator()

	_, err := New(nil, gen)
	assert.Error(t, err)

	_, err = New(NewAgents(fixtures.AB(), 0), nil)
	assert.Error(t, err)

	dup := []*persona.Persona{fixtures.Persona("Kim", "X"), fixtures.Persona("KIM", "Y")}
	_, err = New(NewAgents(dup, 0), gen)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidPersona))
}

type countingRecorder struct {
	mu      sync.Mutex
	rounds  map[string]int
	turns   map[string]int
	prompts int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{rounds: map[string]int{}, turns: map[string]int{}}
}

func (r *countingRecorder) ObserveRound(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds[kind]++
}

func (r *countingRecorder) ObserveTurn(agent string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns[agent]++
}

func (r *countingRecorder) ObservePromptTokens(string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts++
}

func TestOrchestrator_RecorderAndTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	rec := newCountingRecorder()
	o := newOrchestrator(t, fixtures.AB(), mocks.NewMockGenerator(),
		WithRecorder(rec),
		WithTracer(tp.Tracer("test")),
		WithTokenizer(tokenizer.NewWordEstimator(8192)),
		WithLogger(zap.NewNop()),
		WithTemperature(0.2),
	)

	conv := o.Open("T")
	_, _, err := o.RunOpening(context.Background(), conv)
	require.NoError(t, err)
	_, _, err = o.RunRound(context.Background(), conv, "more")
	require.NoError(t, err)
	_, _, err = o.Ask(context.Background(), conv, "A", "?")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{RoundOpening: 1, RoundBroadcast: 1, RoundDirected: 1}, rec.rounds)
	assert.Equal(t, map[string]int{"A": 3, "B": 2}, rec.turns)
	assert.Equal(t, 5, rec.prompts)

	// 3 round spans + 5 turn spans
	assert.Len(t, exporter.GetSpans(), 8)
}

func TestOrchestrator_EmptyInputRoundIsBroadcast(t *testing.T) {
	rec := newCountingRecorder()
	o := newOrchestrator(t, fixtures.AB(), mocks.NewMockGenerator(), WithRecorder(rec))

	conv := o.Open("T")
	_, _, err := o.RunOpening(context.Background(), conv)
	require.NoError(t, err)
	_, _, err = o.RunRound(context.Background(), conv, "   ")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{RoundOpening: 1, RoundBroadcast: 1}, rec.rounds)
}

type fixedTokenizer struct {
	name  string
	count int
	max   int

	mu    sync.Mutex
	calls int
}

func (f *fixedTokenizer) CountTokens(string) (int, error) { return f.count, nil }
func (f *fixedTokenizer) MaxTokens() int                  { return f.max }
func (f *fixedTokenizer) Name() string                    { return f.name }

func (f *fixedTokenizer) CountMessages([]tokenizer.Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.count, nil
}

func TestOrchestrator_TokenizerPerBackend(t *testing.T) {
	small := &fixedTokenizer{name: "small", count: 500, max: 100}
	large := &fixedTokenizer{name: "large", count: 500, max: 128000}
	byBackend := map[llm.Backend]tokenizer.Tokenizer{
		llm.BackendGPT4:  small,
		llm.BackendGPT4o: large,
	}

	core, logs := observer.New(zapcore.WarnLevel)
	ps := []*persona.Persona{
		fixtures.PersonaWithBackend("A", "X", llm.BackendGPT4),
		fixtures.PersonaWithBackend("B", "Y", llm.BackendGPT4o),
		fixtures.PersonaWithBackend("C", "Z", llm.BackendEcho),
	}
	o := newOrchestrator(t, ps, mocks.NewMockGenerator(),
		WithLogger(zap.New(core)),
		WithTokenizerFor(func(b llm.Backend) tokenizer.Tokenizer { return byBackend[b] }),
	)

	_, _, err := o.RunOpening(context.Background(), o.Open("T"))
	require.NoError(t, err)

	assert.Equal(t, 1, small.calls)
	assert.Equal(t, 1, large.calls)

	warnings := logs.FilterMessage("prompt exceeds model context window").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, string(llm.BackendGPT4), fields["backend"])
	assert.Equal(t, "small", fields["tokenizer"])
	assert.EqualValues(t, 100, fields["max_tokens"])
}
