package db

import "gorm.io/gorm"

// KVRecord 以键值形式保存一整个集合的序列化内容（例如 routineTasks、moodHistory）。
// Key 唯一，Value 为可读的 JSON 文本。
type KVRecord struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (KVRecord) TableName() string {
	return "kv_records"
}
