package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore 在数据目录下为每个 key 保存一个 <key>.json 文件。
type FileStore struct {
	BaseDir string
	mu      sync.Mutex
}

// NewFileStore 构造 FileStore 并确保目录存在。
func NewFileStore(baseDir string) (*FileStore, error) {
	dir := strings.TrimSpace(baseDir)
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{BaseDir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.BaseDir, key+".json")
}

func (s *FileStore) Load(key string, dst any) bool {
	s.mu.Lock()
	raw, err := os.ReadFile(s.path(key))
	s.mu.Unlock()
	if err != nil {
		return false
	}
	return decodeInto(key, raw, dst)
}

// Save 写入临时文件后 rename 覆盖目标文件。
func (s *FileStore) Save(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}
