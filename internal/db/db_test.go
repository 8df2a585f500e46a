package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mindwell.db")

	gdb, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("expected parent dir to exist: %v", err)
	}

	migrator := gdb.Migrator()
	if !migrator.HasTable(&KVRecord{}) {
		t.Fatal("expected kv_records table")
	}
	if !migrator.HasTable(&SystemSetting{}) {
		t.Fatal("expected system_settings table")
	}
}

func TestEnsureParentDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := ensureParentDir(filepath.Join(blocker, "mindwell.db")); err == nil {
		t.Fatal("expected error when parent is a file")
	}
}
