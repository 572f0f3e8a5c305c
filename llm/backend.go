package llm

import (
	"strings"

	"github.com/BaSui01/senate/types"
)

// Backend 标识一种生成后端。它是封闭的枚举：人设加载时即校验，
// 未知取值在启动期就会被拒绝，而不是等到第一次调用。
type Backend string

const (
	// BackendGPT4 是原始模拟器使用的后端，也是人设未声明时的默认值。
	BackendGPT4 Backend = "gpt-4"
	// BackendGPT4o 走 OpenAI 的 gpt-4o 模型。
	BackendGPT4o Backend = "gpt-4o"
	// BackendOpenAICompatible 走配置的 base_url（LocalAI、vLLM 等兼容服务）。
	BackendOpenAICompatible Backend = "openai-compatible"
	// BackendEcho 是离线的确定性后端，用于演练与测试。
	BackendEcho Backend = "echo"
)

// DefaultBackend 人设未指定后端时使用。
const DefaultBackend = BackendGPT4

var supportedBackends = []Backend{
	BackendGPT4,
	BackendGPT4o,
	BackendOpenAICompatible,
	BackendEcho,
}

// SupportedBackends 返回所有受支持的后端（顺序固定）。
func SupportedBackends() []Backend {
	out := make([]Backend, len(supportedBackends))
	copy(out, supportedBackends)
	return out
}

// Valid 报告 b 是否为受支持的后端。
func (b Backend) Valid() bool {
	for _, s := range supportedBackends {
		if b == s {
			return true
		}
	}
	return false
}

func (b Backend) String() string { return string(b) }

// ParseBackend 解析后端标识；空串返回 DefaultBackend，未知取值返回
// ErrUnsupportedBackend。
func ParseBackend(s string) (Backend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultBackend, nil
	}
	b := Backend(s)
	if !b.Valid() {
		return "", UnsupportedBackendError(s)
	}
	return b, nil
}

// UnsupportedBackendError 构造未知后端错误，消息中附带受支持的取值。
func UnsupportedBackendError(name string) *types.Error {
	return types.Errorf(types.ErrUnsupportedBackend, "no model by the name %q (supported: %s)",
		name, JoinBackends(SupportedBackends()))
}

// JoinBackends 以 ", " 连接后端名称，用于错误与日志。
func JoinBackends(bs []Backend) string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
