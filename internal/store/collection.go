package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mindwell/internal/logger"
	"go.uber.org/zap"
)

// CollectionVersion 是当前集合信封的结构版本。
const CollectionVersion = 1

type collectionEnvelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
}

// SaveCollection 以 {"version":N,"items":[...]} 的形式保存有序集合。
func SaveCollection[T any](s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := s.Save(key, collectionEnvelope[T]{Version: CollectionVersion, Items: items}); err != nil {
		return fmt.Errorf("save collection %s: %w", key, err)
	}
	return nil
}

// LoadCollection 读取集合，兼容旧版裸数组格式。
// 单条记录损坏时只跳过该条；整体不可解析时返回空集合。
func LoadCollection[T any](s Store, key string) []T {
	var raw json.RawMessage
	if !s.Load(key, &raw) {
		return nil
	}

	records := splitRecords(key, raw)
	items := make([]T, 0, len(records))
	for i, record := range records {
		var item T
		if err := json.Unmarshal(record, &item); err != nil {
			logger.Warn("store: skip damaged record",
				zap.String("key", key),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

func splitRecords(key string, raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var legacy []json.RawMessage
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			logger.Warn("store: discard legacy collection", zap.String("key", key), zap.Error(err))
			return nil
		}
		return legacy
	case '{':
		var envelope collectionEnvelope[json.RawMessage]
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			logger.Warn("store: discard collection envelope", zap.String("key", key), zap.Error(err))
			return nil
		}
		if envelope.Version > CollectionVersion {
			logger.Warn("store: collection written by newer version",
				zap.String("key", key),
				zap.Int("version", envelope.Version))
		}
		return envelope.Items
	default:
		logger.Warn("store: unexpected collection shape", zap.String("key", key))
		return nil
	}
}
