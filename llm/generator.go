package llm

import "context"

// GenerateRequest 是一次生成调用的输入：人设描述作为系统消息，
// 记忆 + 对话 + 人类输入拼成的文本作为用户消息。
type GenerateRequest struct {
	Backend     Backend `json:"backend"`
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
}

// Usage 记录一次生成的 token 用量（后端未返回时为零）。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
}

// GenerateResponse 是一次生成调用的输出。
type GenerateResponse struct {
	Content  string `json:"content"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
	Usage    Usage  `json:"usage,omitempty"`
}

// Generator 是响应生成器的统一接口。调用是同步的，可能长时间阻塞；
// 取消通过 ctx 传递。实现不做重试。
type Generator interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
}

// GeneratorFunc 让普通函数满足 Generator。
type GeneratorFunc func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

// Generate 调用 f。
func (f GeneratorFunc) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return f(ctx, req)
}

// Name 返回固定名称 "func"。
func (f GeneratorFunc) Name() string { return "func" }
