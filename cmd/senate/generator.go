package main

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/senate/agent/senate"
	"github.com/BaSui01/senate/config"
	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/llm/middleware"
	"github.com/BaSui01/senate/llm/providers/echo"
	"github.com/BaSui01/senate/llm/providers/openai"
	"github.com/BaSui01/senate/llm/tokenizer"
	"github.com/BaSui01/senate/persona"
	"github.com/BaSui01/senate/types"
)

// =============================================================================
// 🤖 生成器装配
// =============================================================================

// backendModels 返回每个后端实际请求的模型名。echo 不调用模型，
// 按配置的默认模型计数。openai-compatible 仅在配置了 base_url 时出现。
func backendModels(cfg config.LLMConfig) map[llm.Backend]string {
	models := map[llm.Backend]string{
		llm.BackendGPT4:  "gpt-4",
		llm.BackendGPT4o: "gpt-4o",
		llm.BackendEcho:  cfg.Model,
	}
	if cfg.BaseURL != "" {
		models[llm.BackendOpenAICompatible] = cfg.Model
	}
	return models
}

// buildRegistry 注册所有可用后端。openai-compatible 仅在配置了 base_url 时注册，
// 未注册的后端在调用时返回 UNSUPPORTED_BACKEND。
func buildRegistry(cfg config.LLMConfig, logger *zap.Logger) (*llm.Registry, error) {
	registry := llm.NewRegistry(logger)
	models := backendModels(cfg)

	base := openai.Config{
		APIKey:       cfg.APIKey,
		Organization: cfg.Organization,
		Timeout:      cfg.Timeout,
	}

	for _, b := range []llm.Backend{llm.BackendGPT4, llm.BackendGPT4o} {
		c := base
		c.Model = models[b]
		if err := registry.Register(b, openai.New(c, logger)); err != nil {
			return nil, err
		}
	}

	if model, ok := models[llm.BackendOpenAICompatible]; ok {
		compat := base
		compat.ProviderName = string(llm.BackendOpenAICompatible)
		compat.BaseURL = cfg.BaseURL
		compat.Model = model
		if err := registry.Register(llm.BackendOpenAICompatible, openai.New(compat, logger)); err != nil {
			return nil, err
		}
	} else {
		logger.Debug("llm.base_url not set, openai-compatible backend disabled")
	}

	if err := registry.Register(llm.BackendEcho, echo.New()); err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		logger.Warn("no API key configured, OpenAI backends will fail; set SENATE_LLM_API_KEY or OPENAI_API_KEY")
	}
	logger.Info("llm backends registered", zap.String("backends", llm.JoinBackends(registry.Backends())))
	return registry, nil
}

// checkBackends 确认每位参议员的后端都已注册，避免开场轮次中途失败。
func checkBackends(registry *llm.Registry, personas []*persona.Persona) error {
	for _, p := range personas {
		if !registry.Has(p.Backend) {
			return types.Errorf(types.ErrUnsupportedBackend,
				"senator %q uses backend %q which is not registered (registered: %s)",
				p.Name, p.Backend, llm.JoinBackends(registry.Backends()))
		}
	}
	return nil
}

// tokenizerFor 按后端的模型选择分词器，同一模型共用一个实例。
func tokenizerFor(cfg config.LLMConfig, logger *zap.Logger) senate.TokenizerFunc {
	byModel := make(map[string]tokenizer.Tokenizer)
	byBackend := make(map[llm.Backend]tokenizer.Tokenizer)
	for b, model := range backendModels(cfg) {
		tk, ok := byModel[model]
		if !ok {
			tk = tokenizer.ForModel(model, logger)
			byModel[model] = tk
		}
		byBackend[b] = tk
	}
	return func(b llm.Backend) tokenizer.Tokenizer { return byBackend[b] }
}

// buildGenerator 返回带中间件链的生成器
// 顺序: Recovery → Tracing → Logging → Metrics → RateLimit → Timeout → Registry
// 限流等待不计入单次调用的超时。
func buildGenerator(cfg config.LLMConfig, registry *llm.Registry, recorder middleware.MetricsRecorder, tracer trace.Tracer, logger *zap.Logger) llm.Generator {
	timed := middleware.NewChain(middleware.TimeoutMiddleware(cfg.Timeout)).Wrap(registry)
	limited := middleware.RateLimited(timed, cfg.RateLimitRPS, cfg.RateLimitBurst)

	chain := middleware.NewChain(
		middleware.RecoveryMiddleware(func(v any) {
			logger.Error("generator panic recovered", zap.Any("panic", v))
		}),
		middleware.TracingMiddleware(tracer),
		middleware.LoggingMiddleware(logger.With(zap.String("component", "llm"))),
	)
	if recorder != nil {
		chain.Use(middleware.MetricsMiddleware(recorder))
	}
	return chain.Wrap(limited)
}
