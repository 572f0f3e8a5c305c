package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	text string
	err  error
}

// lineReader 在后台 goroutine 中逐行读取，使 next 可以响应 ctx 取消。
// 行长度不设上限。阻塞在 stdin 上的 goroutine 会随进程退出。
type lineReader struct {
	reader *bufio.Reader
	once   sync.Once
	req    chan struct{}
	res    chan lineResult
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		reader: bufio.NewReader(r),
		req:    make(chan struct{}),
		res:    make(chan lineResult, 1),
	}
}

func (l *lineReader) loop() {
	for range l.req {
		l.res <- l.read()
	}
}

// read 返回去掉 "\n" 或 "\r\n" 的一行；末尾没有换行的残行照常返回，
// 之后的读取得到 io.EOF。
func (l *lineReader) read() lineResult {
	line, err := l.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return lineResult{err: err}
	}
	if err != nil && line == "" {
		return lineResult{err: io.EOF}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return lineResult{text: line}
}

// next 返回下一行（不含换行符）。输入结束时返回 io.EOF。
func (l *lineReader) next(ctx context.Context) (string, error) {
	l.once.Do(func() { go l.loop() })

	select {
	case l.req <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-l.res:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
