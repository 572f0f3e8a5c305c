// Package tokenizer 提供统一的 Token 计数接口，
// 支持 tiktoken 精确计数与按词粗估的 WordEstimator。参议员提示词在发送前按各自后端的模型计数，
// 用于指标上报与上下文窗口告警；tiktoken 编码数据不可用时自动回退到估算器。
package tokenizer
