package llm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry 将后端映射到具体的 Generator，并按请求的后端分发调用。
type Registry struct {
	mu         sync.RWMutex
	generators map[Backend]Generator
	logger     *zap.Logger
}

// NewRegistry 创建空注册表。
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		generators: make(map[Backend]Generator),
		logger:     logger.With(zap.String("component", "llm_registry")),
	}
}

// Register 为后端注册生成器；后端必须是受支持的取值。
func (r *Registry) Register(b Backend, g Generator) error {
	if !b.Valid() {
		return UnsupportedBackendError(string(b))
	}
	if g == nil {
		return fmt.Errorf("generator for backend %q is nil", b)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[b] = g
	r.logger.Debug("backend registered", zap.String("backend", string(b)), zap.String("generator", g.Name()))
	return nil
}

// Lookup 返回后端对应的生成器。
func (r *Registry) Lookup(b Backend) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[b]
	return g, ok
}

// Has 报告后端是否已注册。
func (r *Registry) Has(b Backend) bool {
	_, ok := r.Lookup(b)
	return ok
}

// Backends 返回已注册的后端，顺序与 SupportedBackends 一致。
func (r *Registry) Backends() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Backend, 0, len(r.generators))
	for _, b := range supportedBackends {
		if _, ok := r.generators[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Generate 按 req.Backend 分发。后端未注册时返回 ErrUnsupportedBackend，
// 调用方应将其视为致命错误，不重试。
func (r *Registry) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("generate request is nil")
	}
	g, ok := r.Lookup(req.Backend)
	if !ok {
		return nil, UnsupportedBackendError(string(req.Backend))
	}
	return g.Generate(ctx, req)
}

// Name 返回 "registry"。
func (r *Registry) Name() string { return "registry" }
