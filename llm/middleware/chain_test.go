package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	llmpkg "github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func okHandler(content string) Handler {
	return func(_ context.Context, _ *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
		return &llmpkg.GenerateResponse{Content: content, Usage: llmpkg.Usage{PromptTokens: 3, CompletionTokens: 2}}, nil
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	c := NewChain(mark("a"), mark("b")).Use(mark("c"))
	assert.Equal(t, 3, c.Len())

	_, err := c.Then(okHandler("x"))(context.Background(), &llmpkg.GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestChain_WrapKeepsName(t *testing.T) {
	g := llmpkg.GeneratorFunc(okHandler("hello"))
	w := NewChain(LoggingMiddleware(zap.NewNop())).Wrap(g)

	assert.Equal(t, "func", w.Name())
	resp, err := w.Generate(context.Background(), &llmpkg.GenerateRequest{Backend: llmpkg.BackendEcho})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
}

func TestTimeoutMiddleware(t *testing.T) {
	slow := func(ctx context.Context, _ *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	_, err := TimeoutMiddleware(10*time.Millisecond)(slow)(context.Background(), &llmpkg.GenerateRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type recorded struct {
	backend string
	usage   llmpkg.Usage
	err     error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (f *fakeRecorder) ObserveGeneration(backend string, _ time.Duration, usage llmpkg.Usage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recorded{backend, usage, err})
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{}
	boom := errors.New("boom")
	failing := func(context.Context, *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) { return nil, boom }

	_, _ = MetricsMiddleware(rec)(okHandler("x"))(context.Background(), &llmpkg.GenerateRequest{Backend: llmpkg.BackendGPT4})
	_, _ = MetricsMiddleware(rec)(failing)(context.Background(), &llmpkg.GenerateRequest{Backend: llmpkg.BackendEcho})

	require.Len(t, rec.calls, 2)
	assert.Equal(t, "gpt-4", rec.calls[0].backend)
	assert.Equal(t, 3, rec.calls[0].usage.PromptTokens)
	assert.NoError(t, rec.calls[0].err)
	assert.Equal(t, "echo", rec.calls[1].backend)
	assert.ErrorIs(t, rec.calls[1].err, boom)
}

func TestRateLimitMiddleware(t *testing.T) {
	assert.Nil(t, NewRateLimiter(0, 1))

	limiter := NewRateLimiter(1, 1)
	require.NotNil(t, limiter)
	h := RateLimitMiddleware(limiter)(okHandler("x"))

	_, err := h(context.Background(), &llmpkg.GenerateRequest{})
	require.NoError(t, err)

	// 令牌已耗尽，下一次等待超过 ctx 期限
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err = h(ctx, &llmpkg.GenerateRequest{Backend: llmpkg.BackendGPT4})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrRateLimited))
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	resp, err := RateLimitMiddleware(nil)(okHandler("x"))(context.Background(), &llmpkg.GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Content)
}

func TestRecoveryMiddleware(t *testing.T) {
	var seen any
	panicking := func(context.Context, *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) { panic("kaboom") }

	_, err := RecoveryMiddleware(func(v any) { seen = v })(panicking)(context.Background(), &llmpkg.GenerateRequest{})

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
	assert.Equal(t, "kaboom", seen)
}

func TestTracingMiddleware(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	h := TracingMiddleware(tp.Tracer("test"))(okHandler("x"))
	_, err := h(context.Background(), &llmpkg.GenerateRequest{Backend: llmpkg.BackendEcho})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "llm.generate", spans[0].Name)
}

func TestRateLimited(t *testing.T) {
	g := llmpkg.GeneratorFunc(okHandler("x"))

	unlimited := RateLimited(g, 0, 0)
	_, isWrapped := unlimited.(*wrapped)
	assert.False(t, isWrapped)

	limited := RateLimited(g, 100, 2)
	_, isWrapped = limited.(*wrapped)
	assert.True(t, isWrapped)
	resp, err := limited.Generate(context.Background(), &llmpkg.GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Content)
}
