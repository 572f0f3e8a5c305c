package transcript

import (
	"fmt"
	"os"
	"sync"

	"github.com/BaSui01/senate/agent/senate"
	"go.uber.org/zap"
)

// =============================================================================
// 📝 文字记录输出
// =============================================================================

// Sink 接收会话的议题与发言，只追加，不改写
type Sink interface {
	// Begin 写入新场景的议题
	Begin(topic string) error
	// Append 依次写入发言
	Append(turns ...senate.Turn) error
	// Close 释放底层资源
	Close() error
}

// Nop 丢弃所有写入，用于未配置记录路径的情形
type Nop struct{}

func (Nop) Begin(string) error          { return nil }
func (Nop) Append(...senate.Turn) error { return nil }
func (Nop) Close() error                { return nil }

// FileSink 以追加模式写入文件
type FileSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	logger *zap.Logger
}

// OpenFile 以 O_APPEND|O_CREATE|O_WRONLY 打开 path
func OpenFile(path string, logger *zap.Logger) (*FileSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	return &FileSink{
		path:   path,
		file:   f,
		logger: logger.With(zap.String("component", "transcript"), zap.String("path", path)),
	}, nil
}

// Path 返回文件路径
func (s *FileSink) Path() string { return s.path }

// Begin 写入议题并跟一个空行
func (s *FileSink) Begin(topic string) error {
	return s.write(topic + "\n\n")
}

// Append 每条发言写成 "{name} [{affiliation}]: {answer}" 并跟一个空行
func (s *FileSink) Append(turns ...senate.Turn) error {
	for _, t := range turns {
		if err := s.write(t.Line() + "\n\n"); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭文件，可重复调用
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *FileSink) write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("transcript %s: %w", s.path, os.ErrClosed)
	}
	if _, err := s.file.WriteString(text); err != nil {
		s.logger.Error("transcript write failed", zap.Error(err))
		return fmt.Errorf("write transcript %s: %w", s.path, err)
	}
	return nil
}

var (
	_ Sink = Nop{}
	_ Sink = (*FileSink)(nil)
)
