package tokenizer

import (
	"strings"
	"unicode/utf8"
)

const (
	// 英文 BPE 平均约 4 个字符一个 token。
	charsPerToken = 4
	// 每条消息的框架开销：3 个分隔 token 加 1 个角色 token。
	messageOverhead = 4
	// 回复起始标记。
	replyPriming = 3
)

// WordEstimator 按空白切词粗估 token 数：每个词至少 1 个 token，
// 长词按字符数再拆分。只在 tiktoken 编码数据不可用时使用。
type WordEstimator struct {
	maxTokens int
}

// NewWordEstimator 创建估算器，maxTokens <= 0 时取 4096。
func NewWordEstimator(maxTokens int) *WordEstimator {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &WordEstimator{maxTokens: maxTokens}
}

func (w *WordEstimator) CountTokens(text string) (int, error) {
	n := 0
	for _, word := range strings.Fields(text) {
		n += (utf8.RuneCountInString(word) + charsPerToken - 1) / charsPerToken
	}
	return n, nil
}

// CountMessages 估算 system + user 提示的总量，含消息框架与回复起始开销。
func (w *WordEstimator) CountMessages(messages []Message) (int, error) {
	total := replyPriming
	for _, m := range messages {
		n, _ := w.CountTokens(m.Content)
		total += n + messageOverhead
	}
	return total, nil
}

func (w *WordEstimator) MaxTokens() int { return w.maxTokens }
func (w *WordEstimator) Name() string   { return "words" }
