package store

import (
	"fmt"

	"github.com/mindwell/internal/db"
	"github.com/mindwell/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 将每个 key 保存为 kv_records 表中的一行。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 构造 GormStore，调用方需保证 kv_records 已迁移。
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

func (s *GormStore) Load(key string, dst any) bool {
	var record db.KVRecord
	// 首次启动时记录缺失属于常态，不走 First 以免 gorm 打印 record not found
	result := s.db.Where("key = ?", key).Limit(1).Find(&record)
	if result.Error != nil {
		logger.Warn("store: load record failed", zap.String("key", key), zap.Error(result.Error))
		return false
	}
	if result.RowsAffected == 0 {
		return false
	}
	return decodeInto(key, []byte(record.Value), dst)
}

func (s *GormStore) Save(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SaveRaw(key, string(raw))
}

// SaveRaw 按 key 幂等写入原始文本。
func (s *GormStore) SaveRaw(key, value string) error {
	record := db.KVRecord{Key: key, Value: value}
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("upsert record %s: %w", key, err)
	}
	return nil
}
