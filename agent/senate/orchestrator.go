package senate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/llm/tokenizer"
	"github.com/BaSui01/senate/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// DefaultTemperature is the sampling temperature used for every turn.
const DefaultTemperature float32 = 0.7

// Round kinds reported to the Recorder.
const (
	RoundOpening   = "opening"
	RoundBroadcast = "broadcast"
	RoundDirected  = "directed"
)

// Recorder receives orchestration events. The metrics collector
// implements it.
type Recorder interface {
	ObserveRound(kind string)
	ObserveTurn(agent string)
	ObservePromptTokens(backend string, tokens int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRound(string)             {}
func (nopRecorder) ObserveTurn(string)              {}
func (nopRecorder) ObservePromptTokens(string, int) {}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(o *Orchestrator) { o.temperature = t }
}

// WithTracer sets the tracer used for round and turn spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithRecorder sets the orchestration event recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// TokenizerFunc resolves the tokenizer matching a backend's model. A nil
// result skips counting for that backend.
type TokenizerFunc func(backend llm.Backend) tokenizer.Tokenizer

// WithTokenizer enables prompt token counting with one tokenizer for every
// backend. Counts are reported to the Recorder and prompts larger than the
// model window are logged.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(o *Orchestrator) {
		if t == nil {
			o.tokenizerFor = nil
			return
		}
		o.tokenizerFor = func(llm.Backend) tokenizer.Tokenizer { return t }
	}
}

// WithTokenizerFor enables prompt token counting with a tokenizer chosen
// per agent backend.
func WithTokenizerFor(fn TokenizerFunc) Option {
	return func(o *Orchestrator) { o.tokenizerFor = fn }
}

// Orchestrator drives rounds over a fixed ordered list of agents.
type Orchestrator struct {
	agents       []*Agent
	generator    llm.Generator
	temperature  float32
	tokenizerFor TokenizerFunc
	recorder     Recorder
	tracer       trace.Tracer
	logger       *zap.Logger
}

// New creates an orchestrator. Agent order is speaking order. Names must
// be unique ignoring case.
func New(agents []*Agent, generator llm.Generator, opts ...Option) (*Orchestrator, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("senate: at least one agent is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("senate: generator is required")
	}
	seen := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		key := strings.ToLower(a.Name())
		if _, dup := seen[key]; dup {
			return nil, types.Errorf(types.ErrInvalidPersona, "duplicate senator name %q", a.Name())
		}
		seen[key] = struct{}{}
	}

	o := &Orchestrator{
		agents:      append([]*Agent(nil), agents...),
		generator:   generator,
		temperature: DefaultTemperature,
		recorder:    nopRecorder{},
		tracer:      noop.NewTracerProvider().Tracer("senate"),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("component", "senate_orchestrator"))
	return o, nil
}

// Agents returns the agents in speaking order.
func (o *Orchestrator) Agents() []*Agent {
	return append([]*Agent(nil), o.agents...)
}

// Find looks an agent up by name, ignoring case.
func (o *Orchestrator) Find(name string) (*Agent, bool) {
	name = strings.TrimSpace(name)
	for _, a := range o.agents {
		if strings.EqualFold(a.Name(), name) {
			return a, true
		}
	}
	return nil, false
}

// Open starts a conversation on topic.
func (o *Orchestrator) Open(topic string) *Conversation {
	return &Conversation{ID: uuid.NewString(), Topic: topic}
}

// RunOpening asks every agent in order with no human input. It is the
// first round of a scenario.
func (o *Orchestrator) RunOpening(ctx context.Context, conv *Conversation) (*Conversation, []Turn, error) {
	return o.runRound(ctx, conv, "", RoundOpening)
}

// RunRound asks every agent in order. humanInput may be empty. On error the
// round stops; the returned turns are those completed before the failure.
func (o *Orchestrator) RunRound(ctx context.Context, conv *Conversation, humanInput string) (*Conversation, []Turn, error) {
	return o.runRound(ctx, conv, humanInput, RoundBroadcast)
}

func (o *Orchestrator) runRound(ctx context.Context, conv *Conversation, humanInput, kind string) (*Conversation, []Turn, error) {
	ctx, span := o.startRound(ctx, conv, kind)
	defer span.End()

	turns := make([]Turn, 0, len(o.agents))
	for _, a := range o.agents {
		turn, err := o.speak(ctx, conv, a, humanInput, false)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return conv, turns, err
		}
		turns = append(turns, turn)
	}
	o.recorder.ObserveRound(kind)
	return conv, turns, nil
}

// Ask directs question at the agent called name. An unknown name returns
// AGENT_NOT_FOUND and changes nothing.
func (o *Orchestrator) Ask(ctx context.Context, conv *Conversation, name, question string) (*Conversation, Turn, error) {
	a, ok := o.Find(name)
	if !ok {
		return conv, Turn{}, types.Errorf(types.ErrAgentNotFound, "senator %q not found", strings.TrimSpace(name))
	}

	ctx, span := o.startRound(ctx, conv, RoundDirected)
	defer span.End()

	turn, err := o.speak(ctx, conv, a, question, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return conv, Turn{}, err
	}
	o.recorder.ObserveRound(RoundDirected)
	return conv, turn, nil
}

func (o *Orchestrator) startRound(ctx context.Context, conv *Conversation, kind string) (context.Context, trace.Span) {
	ctx = types.WithRoundID(ctx, uuid.NewString())
	return o.tracer.Start(ctx, "senate.round", trace.WithAttributes(
		attribute.String("senate.round.kind", kind),
		attribute.String("senate.conversation.id", conv.ID),
		attribute.Int("senate.conversation.turns", conv.Len()),
	))
}

func (o *Orchestrator) speak(ctx context.Context, conv *Conversation, a *Agent, humanInput string, directed bool) (Turn, error) {
	ctx = types.WithAgentName(ctx, a.Name())
	ctx, span := o.tracer.Start(ctx, "senate.turn", trace.WithAttributes(
		attribute.String("senate.agent", a.Name()),
		attribute.String("llm.backend", string(a.Backend())),
	))
	defer span.End()

	req := &llm.GenerateRequest{
		Backend:     a.Backend(),
		System:      a.Description(),
		Prompt:      BuildPrompt(a.Memory.Retrieve(conv.Topic), conv.Render(), humanInput),
		Temperature: o.temperature,
	}
	o.countPrompt(req)

	start := time.Now()
	resp, err := o.generator.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("generation failed",
			o.logFields(ctx, a, zap.Duration("duration", time.Since(start)), zap.Error(err))...)
		return Turn{}, fmt.Errorf("senator %s: %w", a.Name(), err)
	}

	a.Memory.Record(conv.Topic, resp.Content)
	turn := Turn{
		ID:          uuid.NewString(),
		Speaker:     a.Name(),
		Affiliation: a.Affiliation(),
		Utterance:   resp.Content,
		Directed:    directed,
		CreatedAt:   time.Now(),
	}
	if directed {
		turn.Question = humanInput
	}
	conv.append(turn)
	o.recorder.ObserveTurn(a.Name())

	o.logger.Debug("turn completed",
		o.logFields(ctx, a, zap.String("turn_id", turn.ID), zap.Duration("duration", time.Since(start)))...)
	return turn, nil
}

func (o *Orchestrator) countPrompt(req *llm.GenerateRequest) {
	if o.tokenizerFor == nil {
		return
	}
	tk := o.tokenizerFor(req.Backend)
	if tk == nil {
		return
	}
	n, err := tk.CountMessages([]tokenizer.Message{
		{Role: "system", Content: req.System},
		{Role: "user", Content: req.Prompt},
	})
	if err != nil {
		o.logger.Debug("prompt token count failed",
			zap.String("backend", string(req.Backend)), zap.Error(err))
		return
	}
	o.recorder.ObservePromptTokens(string(req.Backend), n)
	if limit := tk.MaxTokens(); limit > 0 && n > limit {
		o.logger.Warn("prompt exceeds model context window",
			zap.String("backend", string(req.Backend)), zap.String("tokenizer", tk.Name()),
			zap.Int("tokens", n), zap.Int("max_tokens", limit))
	}
}

func (o *Orchestrator) logFields(ctx context.Context, a *Agent, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("senator", a.Name()),
		zap.String("backend", string(a.Backend())),
	}
	if id, ok := types.SessionID(ctx); ok {
		fields = append(fields, zap.String("session_id", id))
	}
	if id, ok := types.RoundID(ctx); ok {
		fields = append(fields, zap.String("round_id", id))
	}
	return append(fields, extra...)
}
