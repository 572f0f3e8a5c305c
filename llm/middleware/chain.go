package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	llmpkg "github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Handler 处理一个生成请求并返回响应.
type Handler func(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error)

// Middleware 将处理器包裹并添加额外功能.
type Middleware func(next Handler) Handler

// Chain 表示中间件链.
type Chain struct {
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewChain 创建新的中间件链.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Use 将中间件添加到链中.
func (c *Chain) Use(m Middleware) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, m)
	return c
}

// Then 用链中的所有中间件包裹一个处理器.
func (c *Chain) Then(h Handler) Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// 按倒序应用中间件
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

// Len 返回链中的中间件数量.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.middlewares)
}

// Wrap 用中间件链包裹生成器，返回的生成器沿用原名称.
func (c *Chain) Wrap(g llmpkg.Generator) llmpkg.Generator {
	return &wrapped{name: g.Name(), handler: c.Then(g.Generate)}
}

type wrapped struct {
	name    string
	handler Handler
}

func (w *wrapped) Generate(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
	return w.handler(ctx, req)
}

func (w *wrapped) Name() string { return w.name }

// 内置中间件

// LoggingMiddleware 记录请求/响应详情.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
			start := time.Now()
			fields := []zap.Field{zap.String("backend", string(req.Backend))}
			if name, ok := types.AgentName(ctx); ok {
				fields = append(fields, zap.String("senator", name))
			}
			logger.Debug("generate request", append(fields, zap.Int("prompt_chars", len(req.Prompt)))...)

			resp, err := next(ctx, req)

			fields = append(fields, zap.Duration("duration", time.Since(start)))
			if err != nil {
				logger.Warn("generate failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("generate finished", append(fields, zap.Int("completion_tokens", resp.Usage.CompletionTokens))...)
			}
			return resp, err
		}
	}
}

// TimeoutMiddleware 对请求添加超时，timeout <= 0 时不做处理.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next Handler) Handler {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, req)
		}
	}
}

// MetricsRecorder 定义生成指标的记录接口.
type MetricsRecorder interface {
	ObserveGeneration(backend string, duration time.Duration, usage llmpkg.Usage, err error)
}

// MetricsMiddleware 收集请求的指标.
func MetricsMiddleware(recorder MetricsRecorder) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			var usage llmpkg.Usage
			if resp != nil {
				usage = resp.Usage
			}
			recorder.ObserveGeneration(string(req.Backend), time.Since(start), usage, err)
			return resp, err
		}
	}
}

// BlockingRateLimiter 定义阻塞式速率限制接口.
type BlockingRateLimiter interface {
	Wait(ctx context.Context) error
}

// NewRateLimiter 基于令牌桶创建限流器，rps <= 0 时返回 nil.
func NewRateLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RateLimitMiddleware 应用速率限制. 等待失败（ctx 结束或超出 burst）映射为 RATE_LIMITED.
func RateLimitMiddleware(limiter BlockingRateLimiter) Middleware {
	return func(next Handler) Handler {
		if limiter == nil {
			return next
		}
		return func(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, types.Errorf(types.ErrRateLimited, "rate limit wait for backend %s", req.Backend).
					WithCause(err)
			}
			return next(ctx, req)
		}
	}
}

// RecoveryMiddleware 从 panic 中恢复.
func RecoveryMiddleware(onPanic func(any)) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.GenerateRequest) (resp *llmpkg.GenerateResponse, err error) {
			defer func() {
				if r := recover(); r != nil {
					if onPanic != nil {
						onPanic(r)
					}
					err = &PanicError{Value: r}
				}
			}()
			return next(ctx, req)
		}
	}
}

// PanicError 表示已恢复的 panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// TracingMiddleware 为每次生成创建一个 span.
func TracingMiddleware(tracer trace.Tracer) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.GenerateRequest) (*llmpkg.GenerateResponse, error) {
			ctx, span := tracer.Start(ctx, "llm.generate",
				trace.WithAttributes(attribute.String("llm.backend", string(req.Backend))))
			defer span.End()

			resp, err := next(ctx, req)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else if resp != nil {
				span.SetAttributes(
					attribute.String("llm.model", resp.Model),
					attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
					attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
				)
			}
			return resp, err
		}
	}
}

// RateLimited 用令牌桶限流包裹生成器，rps <= 0 时原样返回.
func RateLimited(g llmpkg.Generator, rps float64, burst int) llmpkg.Generator {
	limiter := NewRateLimiter(rps, burst)
	if limiter == nil {
		return g
	}
	return NewChain(RateLimitMiddleware(limiter)).Wrap(g)
}
