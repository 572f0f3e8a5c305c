// MockGenerator 是 llm.Generator 的测试模拟实现。
//
// 支持固定响应、按脚本依次响应、按请求动态响应与错误注入场景。
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/senate/llm"
)

// --- MockGenerator 结构 ---

// MockGenerator 是 llm.Generator 的模拟实现
type MockGenerator struct {
	mu sync.Mutex

	// 响应配置
	response  string
	script    []string
	responder func(req *llm.GenerateRequest) string
	err       error

	// Token 使用统计
	promptTokens     int
	completionTokens int

	// 调用记录
	calls        []MockGeneratorCall
	generateFunc func(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error)

	// 行为控制
	delay     time.Duration
	failAfter int // 在第 N 次调用后失败
}

// MockGeneratorCall 记录单次调用
type MockGeneratorCall struct {
	Request  llm.GenerateRequest
	Response *llm.GenerateResponse
	Error    error
}

// ErrFailAfter 是 WithFailAfter 触发时返回的错误
var ErrFailAfter = errors.New("mock generator: configured to fail after N calls")

// --- 构造函数和 Builder 方法 ---

// NewMockGenerator 创建新的 MockGenerator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		response:         "Mock response",
		promptTokens:     10,
		completionTokens: 20,
	}
}

// WithResponse 设置固定响应内容
func (m *MockGenerator) WithResponse(response string) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithScript 设置按调用顺序依次返回的响应，用完后回落到固定响应
func (m *MockGenerator) WithScript(responses ...string) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append([]string(nil), responses...)
	return m
}

// WithResponder 根据请求计算响应内容
func (m *MockGenerator) WithResponder(fn func(req *llm.GenerateRequest) string) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = fn
	return m
}

// WithError 设置返回错误
func (m *MockGenerator) WithError(err error) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithTokenUsage 设置 Token 使用量
func (m *MockGenerator) WithTokenUsage(prompt, completion int) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptTokens = prompt
	m.completionTokens = completion
	return m
}

// WithDelay 设置响应延迟，延迟期间尊重 ctx 取消
func (m *MockGenerator) WithDelay(d time.Duration) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithFailAfter 设置在第 N 次调用后失败
func (m *MockGenerator) WithFailAfter(n int) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// WithGenerateFunc 设置自定义 Generate 函数
func (m *MockGenerator) WithGenerateFunc(fn func(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error)) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateFunc = fn
	return m
}

// --- Generator 接口实现 ---

// Name 返回生成器名称
func (m *MockGenerator) Name() string {
	return "mock"
}

// Generate 生成响应
func (m *MockGenerator) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, m.record(req, nil, ctx.Err())
		case <-time.After(delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAfter > 0 && len(m.calls) >= m.failAfter {
		m.calls = append(m.calls, MockGeneratorCall{Request: *req, Error: ErrFailAfter})
		return nil, ErrFailAfter
	}

	// 检查是否有预设错误
	if m.err != nil {
		m.calls = append(m.calls, MockGeneratorCall{Request: *req, Error: m.err})
		return nil, m.err
	}

	// 使用自定义函数
	if m.generateFunc != nil {
		resp, err := m.generateFunc(ctx, req)
		m.calls = append(m.calls, MockGeneratorCall{Request: *req, Response: resp, Error: err})
		return resp, err
	}

	content := m.response
	switch {
	case len(m.script) > 0:
		content = m.script[0]
		m.script = m.script[1:]
	case m.responder != nil:
		content = m.responder(req)
	}

	resp := &llm.GenerateResponse{
		Content:  content,
		Model:    string(req.Backend),
		Provider: "mock",
		Usage: llm.Usage{
			PromptTokens:     m.promptTokens,
			CompletionTokens: m.completionTokens,
		},
	}
	m.calls = append(m.calls, MockGeneratorCall{Request: *req, Response: resp})
	return resp, nil
}

func (m *MockGenerator) record(req *llm.GenerateRequest, resp *llm.GenerateResponse, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockGeneratorCall{Request: *req, Response: resp, Error: err})
	return err
}

// --- 调用记录查询 ---

// Calls 返回所有调用记录的副本
func (m *MockGenerator) Calls() []MockGeneratorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockGeneratorCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回调用次数
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall 返回最后一次调用
func (m *MockGenerator) LastCall() (MockGeneratorCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return MockGeneratorCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// Reset 清空调用记录
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
