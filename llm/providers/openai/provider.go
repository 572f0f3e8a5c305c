package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/senate/internal/tlsutil"
	"github.com/BaSui01/senate/llm"
	"github.com/BaSui01/senate/types"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultTimeout 未配置超时时使用。
const DefaultTimeout = 150 * time.Second

// Config 是单个 OpenAI（或兼容服务）生成器的配置。
type Config struct {
	// ProviderName 出现在日志与错误中，默认 "openai"。
	ProviderName string
	APIKey       string
	// BaseURL 为空时使用 OpenAI 官方地址。
	BaseURL      string
	Organization string
	// Model 是实际请求的模型名称。
	Model   string
	Timeout time.Duration
	// HTTPClient 非空时覆盖按 Timeout 构造的客户端。
	HTTPClient *http.Client
}

// Provider 通过 go-openai 的 Chat Completions 接口生成参议员回复。
type Provider struct {
	client *goopenai.Client
	cfg    Config
	logger *zap.Logger
}

// New 创建 Provider。
func New(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProviderName == "" {
		cfg.ProviderName = "openai"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Organization != "" {
		clientCfg.OrgID = cfg.Organization
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else {
		clientCfg.HTTPClient = tlsutil.LLMClient(cfg.Timeout)
	}

	return &Provider{
		client: goopenai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger.With(zap.String("component", "openai_provider"), zap.String("provider", cfg.ProviderName)),
	}
}

// Name 返回提供者名称。
func (p *Provider) Name() string { return p.cfg.ProviderName }

// Model 返回请求使用的模型名称。
func (p *Provider) Model() string { return p.cfg.Model }

// Generate 发送 system + user 两条消息并返回首个候选的文本。
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	start := time.Now()

	// temperature 带 omitempty，0 会被省略而退回服务端默认值 1。
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		mapped := p.mapError(err)
		p.logger.Warn("chat completion failed",
			zap.String("model", p.cfg.Model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(mapped))
		return nil, mapped
	}

	if len(resp.Choices) == 0 {
		return nil, types.Errorf(types.ErrEmptyResponse, "model %s returned no choices", p.cfg.Model).
			WithProvider(p.Name())
	}

	p.logger.Debug("chat completion finished",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)))

	model := resp.Model
	if model == "" {
		model = p.cfg.Model
	}
	return &llm.GenerateResponse{
		Content:  resp.Choices[0].Message.Content,
		Model:    model,
		Provider: p.Name(),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// mapError 将 go-openai 的错误映射为 types.Error。
// 429 与 5xx 标记为可重试，但本包不做重试。
func (p *Provider) mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	msg := err.Error()

	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		msg = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).
			WithCause(err).WithRetryable(true).WithProvider(p.Name())
	case status >= 500:
		return types.Errorf(types.ErrUpstreamError, "%s (status %d)", msg, status).
			WithCause(err).WithRetryable(true).WithProvider(p.Name())
	case status != 0:
		return types.Errorf(types.ErrUpstreamError, "%s (status %d)", msg, status).
			WithCause(err).WithProvider(p.Name())
	default:
		return types.NewError(types.ErrUpstreamError, fmt.Sprintf("request to %s failed", p.Name())).
			WithCause(err).WithProvider(p.Name())
	}
}
