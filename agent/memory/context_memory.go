package memory

import (
	"sort"
	"strings"
	"sync"
)

// DefaultCapacity 每个议题保留的最近发言条数，超出后按 FIFO 淘汰最旧条目。
const DefaultCapacity = 5

// Separator 用于 Retrieve 拼接多条发言。
const Separator = "\n"

// ContextMemory 是单个参议员的议题记忆：议题 → 有界环形缓冲区。
//
// 议题按字符串精确匹配，不做语义相似度判断。记忆只属于一个参议员，
// 只存放该参议员自己说过的话。
type ContextMemory struct {
	mu       sync.RWMutex
	capacity int
	topics   map[string]*ring
}

// NewContextMemory 创建记忆；capacity <= 0 时使用 DefaultCapacity。
func NewContextMemory(capacity int) *ContextMemory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ContextMemory{
		capacity: capacity,
		topics:   make(map[string]*ring),
	}
}

// Record 将 utterance 追加到 topic 下；超出容量时丢弃最旧条目。
func (m *ContextMemory) Record(topic, utterance string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.topics[topic]
	if !ok {
		r = newRing(m.capacity)
		m.topics[topic] = r
	}
	r.push(utterance)
}

// Retrieve 返回 topic 下的发言，按时间从旧到新以换行拼接；无记录时返回空串。
func (m *ContextMemory) Retrieve(topic string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.topics[topic]
	if !ok || r.len() == 0 {
		return ""
	}
	return strings.Join(r.items(), Separator)
}

// Entries 返回 topic 下发言的副本，从旧到新。
func (m *ContextMemory) Entries(topic string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.topics[topic]
	if !ok {
		return nil
	}
	return r.items()
}

// Len 返回 topic 下当前保存的条数。
func (m *ContextMemory) Len(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := m.topics[topic]; ok {
		return r.len()
	}
	return 0
}

// Topics 返回已有记录的议题，按字典序排序。
func (m *ContextMemory) Topics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.topics))
	for t := range m.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Capacity 返回每个议题的容量上限。
func (m *ContextMemory) Capacity() int {
	return m.capacity
}
