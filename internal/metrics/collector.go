// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标（/metrics 与 /health 端点）
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// LLM 指标
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec
	llmErrorsTotal     *prometheus.CounterVec
	promptTokens       *prometheus.HistogramVec

	// 辩论指标
	roundsTotal    *prometheus.CounterVec
	turnsTotal     *prometheus.CounterVec
	commandsTotal  *prometheus.CounterVec
	scenariosTotal prometheus.Counter

	logger *zap.Logger
}

// NewCollector 创建指标收集器，注册到默认 Registry
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWithRegisterer(namespace, prometheus.DefaultRegisterer, logger)
}

// NewCollectorWithRegisterer 创建指标收集器，注册到指定 Registerer
func NewCollectorWithRegisterer(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LLM 指标
	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of generation requests",
		},
		[]string{"backend", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Generation request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)

	c.llmTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens reported by the backend",
		},
		[]string{"backend", "type"}, // type: prompt, completion
	)

	c.llmErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_errors_total",
			Help:      "Total number of failed generation requests by error code",
		},
		[]string{"backend", "code"},
	)

	c.promptTokens = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prompt_tokens",
			Help:      "Locally counted prompt size in tokens",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
		},
		[]string{"backend"},
	)

	// 辩论指标
	c.roundsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Total number of completed rounds",
		},
		[]string{"kind"}, // opening, broadcast, directed
	)

	c.turnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of turns per senator",
		},
		[]string{"agent"},
	)

	c.commandsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of interactive commands by outcome",
		},
		[]string{"command"},
	)

	c.scenariosTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Total number of scenarios started",
		},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// =============================================================================
// 🤖 LLM 指标记录
// =============================================================================

// ObserveGeneration 记录一次生成调用
func (c *Collector) ObserveGeneration(backend string, duration time.Duration, usage llm.Usage, err error) {
	status := "success"
	if err != nil {
		status = "error"
		code := string(types.GetErrorCode(err))
		if code == "" {
			code = "unknown"
		}
		c.llmErrorsTotal.WithLabelValues(backend, code).Inc()
	}
	c.llmRequestsTotal.WithLabelValues(backend, status).Inc()
	c.llmRequestDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if usage.PromptTokens > 0 {
		c.llmTokensUsed.WithLabelValues(backend, "prompt").Add(float64(usage.PromptTokens))
	}
	if usage.CompletionTokens > 0 {
		c.llmTokensUsed.WithLabelValues(backend, "completion").Add(float64(usage.CompletionTokens))
	}
}

// ObservePromptTokens 记录本地计数的提示词 token 数
func (c *Collector) ObservePromptTokens(backend string, tokens int) {
	c.promptTokens.WithLabelValues(backend).Observe(float64(tokens))
}

// =============================================================================
// 🏛️ 辩论指标记录
// =============================================================================

// ObserveRound 记录一个完成的轮次
func (c *Collector) ObserveRound(kind string) {
	c.roundsTotal.WithLabelValues(kind).Inc()
}

// ObserveTurn 记录一次发言
func (c *Collector) ObserveTurn(agent string) {
	c.turnsTotal.WithLabelValues(agent).Inc()
}

// ObserveCommand 记录一次交互命令
func (c *Collector) ObserveCommand(command string) {
	c.commandsTotal.WithLabelValues(command).Inc()
}

// ObserveScenario 记录一个开始的场景
func (c *Collector) ObserveScenario() {
	c.scenariosTotal.Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
