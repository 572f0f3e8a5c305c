package tokenizer

import (
	"sync"

	"go.uber.org/zap"
)

// Tokenizer 统一的 token 计数接口.
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// CountMessages 返回消息列表的总 token 数,
	// 包括每条消息的开销（角色标记、分隔符等）。
	CountMessages(messages []Message) (int, error)

	// MaxTokens 返回模型的最大上下文长度.
	MaxTokens() int

	// Name 返回分词器的名称.
	Name() string
}

// Message 是一个轻量级消息结构, 避免与 llm 包的循环依赖.
type Message struct {
	Role    string
	Content string
}

// ForModel 返回模型对应的分词器: 优先 tiktoken, 编码数据不可用时回退到估算器.
func ForModel(model string, logger *zap.Logger) Tokenizer {
	primary := NewTiktokenTokenizer(model)
	return NewFallback(primary, NewWordEstimator(primary.MaxTokens()), logger)
}

// Fallback 在 primary 出错时改用 secondary 计数.
// 出错只记录一次日志.
type Fallback struct {
	primary   Tokenizer
	secondary Tokenizer
	logger    *zap.Logger
	warnOnce  sync.Once
}

// NewFallback 创建回退分词器.
func NewFallback(primary, secondary Tokenizer, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With(zap.String("component", "tokenizer")),
	}
}

func (f *Fallback) CountTokens(text string) (int, error) {
	n, err := f.primary.CountTokens(text)
	if err == nil {
		return n, nil
	}
	f.warn(err)
	return f.secondary.CountTokens(text)
}

func (f *Fallback) CountMessages(messages []Message) (int, error) {
	n, err := f.primary.CountMessages(messages)
	if err == nil {
		return n, nil
	}
	f.warn(err)
	return f.secondary.CountMessages(messages)
}

func (f *Fallback) MaxTokens() int { return f.primary.MaxTokens() }

func (f *Fallback) Name() string { return f.primary.Name() + "|" + f.secondary.Name() }

func (f *Fallback) warn(err error) {
	f.warnOnce.Do(func() {
		f.logger.Warn("tokenizer unavailable, falling back to estimator",
			zap.String("tokenizer", f.primary.Name()), zap.Error(err))
	})
}
