package store

import (
	"path/filepath"
	"testing"

	"github.com/mindwell/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenByDriver(t *testing.T) {
	s, gdb, err := Open(config.AppConfig{StoreDriver: config.StoreDriverMemory})
	require.NoError(t, err)
	assert.Nil(t, gdb)
	assert.IsType(t, &MemoryStore{}, s)

	dir := filepath.Join(t.TempDir(), "data")
	s, gdb, err = Open(config.AppConfig{StoreDriver: config.StoreDriverFile, DataDir: dir})
	require.NoError(t, err)
	assert.Nil(t, gdb)
	require.IsType(t, &FileStore{}, s)
	assert.Equal(t, dir, s.(*FileStore).BaseDir)
}
