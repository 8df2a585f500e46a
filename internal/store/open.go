package store

import (
	"fmt"

	"github.com/mindwell/internal/config"
	"github.com/mindwell/internal/db"
	"gorm.io/gorm"
)

// Open 按 STORE_DRIVER 构造持久化实现；只有 sqlite 驱动会返回数据库连接。
func Open(cfg config.AppConfig) (Store, *gorm.DB, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverFile:
		s, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil, nil
	case config.StoreDriverMemory:
		return NewMemoryStore(), nil, nil
	default:
		if err := db.Init(cfg.DatabasePath); err != nil {
			return nil, nil, fmt.Errorf("initialize database: %w", err)
		}
		return NewGormStore(db.DB), db.DB, nil
	}
}
