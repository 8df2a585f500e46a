// Package store 是状态持久化的唯一 I/O 边界：按 key 读写可读的 JSON 值。
package store

import (
	"encoding/json"
	"sync"

	"github.com/mindwell/internal/logger"
	"go.uber.org/zap"
)

const (
	// KeyRoutineTasks 保存每日任务列表。
	KeyRoutineTasks = "routineTasks"
	// KeyMoodHistory 保存情绪日记。
	KeyMoodHistory = "moodHistory"
)

// Store 定义键值持久化能力。
//
// Load 在 key 从未写入、内容为空或无法解析时返回 false，绝不把解析错误抛给调用方。
// Save 同步写入，最近一次写入总是胜出并可被随后的 Load 读到。
type Store interface {
	Load(key string, dst any) bool
	Save(key string, value any) error
}

// decodeInto 解析原始内容，损坏内容记录告警后视为不存在。
func decodeInto(key string, raw []byte, dst any) bool {
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("store: discard unparseable content", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func encode(value any) ([]byte, error) {
	return json.MarshalIndent(value, "", "  ")
}

// MemoryStore 是基于 map 的实现，用于测试和 STORE_DRIVER=memory。
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(key string, dst any) bool {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return decodeInto(key, raw, dst)
}

func (s *MemoryStore) Save(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// SetRaw 直接写入原始字节，测试用来模拟损坏的数据。
func (s *MemoryStore) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), raw...)
}

// Raw 返回 key 当前保存的原始字节。
func (s *MemoryStore) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[key]
	return append([]byte(nil), raw...), ok
}
